package execution

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/core/services/worker"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

var _ IExecutionService = (*ExecutionService)(nil)

// ExecutionService implements IExecutionService on top of the language adapters
type ExecutionService struct {
	adapters     secondary.AdapterSet
	materializer secondary.Materializer
	pool         *worker.Pool
	judgements   secondary.JudgementRepository
	logger       primary.Logger
}

// NewExecutionService creates a new execution service. judgements may be nil, in
// which case verdicts are not recorded.
func NewExecutionService(
	adapters secondary.AdapterSet,
	materializer secondary.Materializer,
	pool *worker.Pool,
	judgements secondary.JudgementRepository,
	logger primary.Logger,
) *ExecutionService {
	return &ExecutionService{
		adapters:     adapters,
		materializer: materializer,
		pool:         pool,
		judgements:   judgements,
		logger:       logger,
	}
}

// Run executes code once. Failures are returned exactly as the adapter reported them.
func (s *ExecutionService) Run(ctx context.Context, language domain.Language, code, input string) (*domain.ExecutionResult, error) {
	adapter, job, done, err := s.prepare(ctx, language, code)
	if err != nil {
		return nil, err
	}
	defer done()

	if err := s.compile(ctx, adapter, job); err != nil {
		return nil, err
	}

	inputPath, err := s.materializer.StageInput(job, input)
	if err != nil {
		return nil, err
	}

	s.transition(job, domain.JobStateRunning)
	result, err := adapter.Run(ctx, job, inputPath)
	if err != nil {
		execErr := domain.AsExecutionError(err)
		s.fail(job, execErr)
		return nil, execErr
	}
	s.transition(job, domain.JobStateSucceeded)

	s.logger.Info("Run completed", "jobId", job.ID, "language", language, "durationMs", result.DurationMs())
	return result, nil
}

// Submit judges code against testCases in order. The source is staged and compiled
// once; the first failing case ends the evaluation. Infrastructure failures are
// returned as errors rather than folded into a verdict.
func (s *ExecutionService) Submit(ctx context.Context, language domain.Language, code string, testCases []domain.TestCase) (*domain.JudgeResult, error) {
	if len(testCases) == 0 {
		return nil, errs.ErrEmptyTestCases
	}

	adapter, job, done, err := s.prepare(ctx, language, code)
	if err != nil {
		return nil, err
	}
	defer done()

	start := time.Now()
	result := &domain.JudgeResult{TestCaseCount: len(testCases)}

	if err := s.compile(ctx, adapter, job); err != nil {
		execErr := domain.AsExecutionError(err)
		if execErr.Kind == domain.FailureInternalError {
			return nil, execErr
		}
		result.Verdict = domain.VerdictForFailure(execErr.Kind)
		result.FailedTestCase = 1
		return s.finish(ctx, job, code, result, start), nil
	}

	for i, testCase := range testCases {
		index := i + 1

		inputPath, err := s.materializer.StageInput(job, testCase.Input)
		if err != nil {
			return nil, err
		}

		s.transition(job, domain.JobStateRunning)
		output, err := adapter.Run(ctx, job, inputPath)
		if err != nil {
			execErr := domain.AsExecutionError(err)
			if execErr.Kind == domain.FailureInternalError {
				return nil, execErr
			}
			s.fail(job, execErr)
			result.Verdict = domain.VerdictForFailure(execErr.Kind)
			result.FailedTestCase = index
			return s.finish(ctx, job, code, result, start), nil
		}

		if !domain.OutputsMatch(output.Stdout, testCase.Output) {
			s.transition(job, domain.JobStateSucceeded)
			result.Verdict = domain.VerdictWrongAnswer
			result.FailedTestCase = index
			return s.finish(ctx, job, code, result, start), nil
		}

		if output.Duration > result.MaxExecutionTime {
			result.MaxExecutionTime = output.Duration
		}
	}

	s.transition(job, domain.JobStateSucceeded)
	result.Verdict = domain.VerdictAccepted
	return s.finish(ctx, job, code, result, start), nil
}

// GetJudgement retrieves a stored judgement
func (s *ExecutionService) GetJudgement(ctx context.Context, id uuid.UUID) (*domain.Judgement, error) {
	if s.judgements == nil {
		return nil, errs.ErrJudgementNotFound
	}

	judgement, err := s.judgements.GetJudgement(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get judgement", "judgementId", id, "error", err)
		return nil, fmt.Errorf("failed to get judgement: %w", err)
	}
	if judgement == nil {
		return nil, errs.ErrJudgementNotFound
	}

	return judgement, nil
}

// ListJudgements retrieves the most recent judgements, newest first
func (s *ExecutionService) ListJudgements(ctx context.Context, limit int) ([]*domain.Judgement, error) {
	if s.judgements == nil {
		return []*domain.Judgement{}, nil
	}

	judgements, err := s.judgements.ListRecentJudgements(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list judgements", "error", err)
		return nil, fmt.Errorf("failed to list judgements: %w", err)
	}

	return judgements, nil
}

// prepare resolves the adapter, takes a pool slot and stages the source. The returned
// done func releases the job's files and the slot and must always be called.
func (s *ExecutionService) prepare(ctx context.Context, language domain.Language, code string) (secondary.LanguageAdapter, *domain.Job, func(), error) {
	adapter, err := s.adapters.Adapter(language)
	if err != nil {
		s.logger.Warn("Rejected job", "language", language, "error", err)
		return nil, nil, nil, err
	}

	release, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	job, err := s.materializer.StageSource(language, code)
	if err != nil {
		release()
		s.logger.Error("Failed to stage source", "language", language, "error", err)
		return nil, nil, nil, err
	}
	s.logger.Debug("Job staged", "jobId", job.ID, "language", language)

	done := func() {
		if err := s.materializer.Release(job); err != nil {
			s.logger.Warn("Failed to release job files", "jobId", job.ID, "error", err)
		}
		release()
	}
	return adapter, job, done, nil
}

// compile runs the compile phase for compiled languages and is a no-op otherwise.
func (s *ExecutionService) compile(ctx context.Context, adapter secondary.LanguageAdapter, job *domain.Job) error {
	if !job.Language.Compiled() {
		return nil
	}

	s.transition(job, domain.JobStateCompiling)
	if err := adapter.Compile(ctx, job); err != nil {
		execErr := domain.AsExecutionError(err)
		s.fail(job, execErr)
		s.logger.Info("Compilation failed", "jobId", job.ID, "kind", execErr.Kind)
		return execErr
	}
	return nil
}

func (s *ExecutionService) finish(ctx context.Context, job *domain.Job, code string, result *domain.JudgeResult, start time.Time) *domain.JudgeResult {
	result.TotalExecutionTime = time.Since(start)

	s.logger.Info("Submission judged",
		"jobId", job.ID,
		"language", job.Language,
		"verdict", result.Verdict,
		"failedTestCase", result.FailedTestCase,
		"maxMs", result.MaxExecutionTime.Milliseconds(),
		"totalMs", result.TotalExecutionTime.Milliseconds())

	if s.judgements != nil {
		judgement := domain.NewJudgement(job.Language, codeDigest(code), result)
		if err := s.judgements.SaveJudgement(ctx, judgement); err != nil {
			s.logger.Error("Failed to record judgement", "jobId", job.ID, "error", err)
		} else {
			result.JudgementID = judgement.ID
		}
	}

	return result
}

func (s *ExecutionService) transition(job *domain.Job, next domain.JobState) {
	if err := job.Transition(next); err != nil {
		s.logger.Warn("Unexpected job transition", "jobId", job.ID, "error", err)
	}
}

func (s *ExecutionService) fail(job *domain.Job, execErr *domain.ExecutionError) {
	if err := job.Fail(execErr.Kind); err != nil {
		s.logger.Warn("Unexpected job transition", "jobId", job.ID, "error", err)
	}
	s.logger.Debug("Job failed", "jobId", job.ID, "kind", execErr.Kind, "diagnostic", execErr.Message)
}

func codeDigest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
