// Package judgementrepository stores the verdict audit log in PostgreSQL
package judgementrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/domain"
	querybuilder "gitlab.com/fcv-judge.net/internal/utils"
)

const defaultListLimit = 50

var _ secondary.JudgementRepository = (*JudgementRepository)(nil)

// JudgementRepository implements the JudgementRepository interface with PostgreSQL
type JudgementRepository struct {
	db     *sqlx.DB
	schema string
	logger primary.Logger
}

// NewJudgementRepository creates a new PostgreSQL judgement repository
func NewJudgementRepository(db *sqlx.DB, schema string, logger primary.Logger) *JudgementRepository {
	return &JudgementRepository{
		db:     db,
		schema: schema,
		logger: logger,
	}
}

// EnsureSchema creates the judgements table when it does not exist yet
func (r *JudgementRepository) EnsureSchema(ctx context.Context) error {
	tbl := domain.GetJudgementTable()
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			%s UUID PRIMARY KEY,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s INTEGER NOT NULL DEFAULT 0,
			%s INTEGER NOT NULL,
			%s BIGINT NOT NULL DEFAULT 0,
			%s BIGINT NOT NULL DEFAULT 0,
			%s TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		r.schema, tbl.TableName(),
		tbl.ID, tbl.Language, tbl.CodeSHA256, tbl.Verdict, tbl.FailedTestCase,
		tbl.TestCaseCount, tbl.MaxExecutionTimeMs, tbl.TotalExecutionTimeMs, tbl.CreatedAt,
	)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("Failed to ensure judgements table", "error", err)
		return fmt.Errorf("failed to ensure judgements table: %w", err)
	}
	return nil
}

// SaveJudgement inserts a judgement; re-saving the same ID is a no-op
func (r *JudgementRepository) SaveJudgement(ctx context.Context, judgement *domain.Judgement) error {
	tbl := domain.GetJudgementTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.Columns()...).
		Into(tbl.TableName()).
		Values(
			judgement.ID,
			judgement.Language,
			judgement.CodeSHA256,
			judgement.Verdict,
			judgement.FailedTestCase,
			judgement.TestCaseCount,
			judgement.MaxExecutionTimeMs,
			judgement.TotalExecutionTimeMs,
			judgement.CreatedAt,
		).
		OnConflict(tbl.ID).
		DoNothing().
		Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to save judgement", "judgementId", judgement.ID, "error", err)
		return fmt.Errorf("failed to save judgement: %w", err)
	}

	return nil
}

// GetJudgement retrieves a judgement by ID, returning nil when it does not exist
func (r *JudgementRepository) GetJudgement(ctx context.Context, id uuid.UUID) (*domain.Judgement, error) {
	tbl := domain.GetJudgementTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.Columns()...).
		From(tbl.TableName()).
		Where(tbl.ID+" = ?", id).
		Build()

	var judgement domain.Judgement
	if err := r.db.GetContext(ctx, &judgement, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get judgement", "judgementId", id, "error", err)
		return nil, fmt.Errorf("failed to get judgement: %w", err)
	}

	return &judgement, nil
}

// ListRecentJudgements retrieves up to limit judgements, newest first
func (r *JudgementRepository) ListRecentJudgements(ctx context.Context, limit int) ([]*domain.Judgement, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	tbl := domain.GetJudgementTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.Columns()...).
		From(tbl.TableName()).
		OrderBy(tbl.CreatedAt, false).
		Limit(limit).
		Build()

	judgements := make([]*domain.Judgement, 0, limit)
	if err := r.db.SelectContext(ctx, &judgements, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to list judgements", "error", err)
		return nil, fmt.Errorf("failed to list judgements: %w", err)
	}

	return judgements, nil
}
