package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/fcv-judge.net/internal/domain"
)

// JudgementRepository stores the audit trail of completed submits.
type JudgementRepository interface {
	SaveJudgement(ctx context.Context, judgement *domain.Judgement) error

	// GetJudgement returns nil, nil when no record exists.
	GetJudgement(ctx context.Context, id uuid.UUID) (*domain.Judgement, error)

	ListRecentJudgements(ctx context.Context, limit int) ([]*domain.Judgement, error)
}
