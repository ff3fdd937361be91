package execution

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/fcv-judge.net/internal/domain"
)

// IExecutionService is the execution service boundary shared by every transport
type IExecutionService interface {
	// Run executes code once against input and returns its raw output or the typed
	// failure with diagnostics intact
	Run(ctx context.Context, language domain.Language, code, input string) (*domain.ExecutionResult, error)

	// Submit judges code against ordered test cases, stopping at the first failure
	Submit(ctx context.Context, language domain.Language, code string, testCases []domain.TestCase) (*domain.JudgeResult, error)

	// GetJudgement retrieves a stored judgement by ID
	GetJudgement(ctx context.Context, id uuid.UUID) (*domain.Judgement, error)

	// ListJudgements retrieves the most recent judgements
	ListJudgements(ctx context.Context, limit int) ([]*domain.Judgement, error)
}
