package judgementrepository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gitlab.com/fcv-judge.net/internal/adapter/logging"
	"gitlab.com/fcv-judge.net/internal/domain"
)

// newTestRepository connects to DATABASE_TEST_URL or skips.
func newTestRepository(t *testing.T) *JudgementRepository {
	t.Helper()
	url := os.Getenv("DATABASE_TEST_URL")
	if url == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewJudgementRepository(db, "public", logging.NewNopLogger())
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo
}

func TestJudgementRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	judgement := domain.NewJudgement(domain.LanguageCpp, "ab12", &domain.JudgeResult{
		Verdict:            domain.VerdictWrongAnswer,
		FailedTestCase:     2,
		TestCaseCount:      4,
		MaxExecutionTime:   12 * time.Millisecond,
		TotalExecutionTime: 80 * time.Millisecond,
	})
	if err := repo.SaveJudgement(ctx, judgement); err != nil {
		t.Fatalf("SaveJudgement: %v", err)
	}
	if err := repo.SaveJudgement(ctx, judgement); err != nil {
		t.Fatalf("re-saving should be a no-op: %v", err)
	}

	got, err := repo.GetJudgement(ctx, judgement.ID)
	if err != nil || got == nil {
		t.Fatalf("GetJudgement: %v, %v", got, err)
	}
	if got.Verdict != string(domain.VerdictWrongAnswer) || got.FailedTestCase != 2 || got.MaxExecutionTimeMs != 12 {
		t.Errorf("unexpected judgement %+v", got)
	}

	recent, err := repo.ListRecentJudgements(ctx, 5)
	if err != nil {
		t.Fatalf("ListRecentJudgements: %v", err)
	}
	if len(recent) == 0 || len(recent) > 5 {
		t.Errorf("unexpected list size %d", len(recent))
	}
}

func TestJudgementRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)
	got, err := repo.GetJudgement(context.Background(), uuid.New())
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}
