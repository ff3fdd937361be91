package exec

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/services/execution"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/handlers/response"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

// Boundary turns wire requests into service calls and service outcomes into a status
// code and body. Every transport (HTTP, WebSocket, TCP) goes through it.
type Boundary struct {
	service execution.IExecutionService
	logger  primary.Logger
}

func NewBoundary(service execution.IExecutionService, logger primary.Logger) *Boundary {
	return &Boundary{service: service, logger: logger}
}

// StatusForFailure maps a failure kind to its transport status.
func StatusForFailure(kind domain.FailureKind) int {
	switch kind {
	case domain.FailureCompileError, domain.FailureRuntimeError:
		return http.StatusBadRequest
	case domain.FailureTimeLimitExceeded:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func failure(err error) (int, interface{}) {
	execErr := domain.AsExecutionError(err)
	return StatusForFailure(execErr.Kind), response.NewFailure(string(execErr.Kind), execErr.Message)
}

func invalid(message string) (int, interface{}) {
	return http.StatusBadRequest, response.NewFailure(response.TypeInvalidRequest, message)
}

// Run executes a RunRequest. Diagnostics are returned verbatim.
func (b *Boundary) Run(ctx context.Context, req RunRequest) (int, interface{}) {
	language, ok := domain.ParseLanguage(req.Language)
	if !ok {
		return failure(fmt.Errorf("%w: %q", errs.ErrUnsupportedLanguage, req.Language))
	}

	result, err := b.service.Run(ctx, language, req.Code, req.Input)
	if err != nil {
		return failure(err)
	}

	return http.StatusOK, RunResponse{
		Success:       true,
		Output:        result.Stdout,
		ExecutionTime: result.DurationMs(),
	}
}

// Submit judges a SubmitRequest. Candidate diagnostics never reach the response.
func (b *Boundary) Submit(ctx context.Context, req SubmitRequest) (int, interface{}) {
	language, ok := domain.ParseLanguage(req.Language)
	if !ok {
		return failure(fmt.Errorf("%w: %q", errs.ErrUnsupportedLanguage, req.Language))
	}
	if len(req.TestCases) == 0 {
		return invalid(errs.ErrEmptyTestCases.Error())
	}

	result, err := b.service.Submit(ctx, language, req.Code, req.TestCases)
	if err != nil {
		if errors.Is(err, errs.ErrEmptyTestCases) {
			return invalid(err.Error())
		}
		b.logger.Error("Submission could not be judged", "language", language, "error", err)
		return failure(err)
	}

	resp := SubmitResponse{
		Success:            true,
		Verdict:            string(result.Verdict),
		MaxExecutionTime:   result.MaxExecutionTime.Milliseconds(),
		TotalExecutionTime: result.TotalExecutionTime.Milliseconds(),
		FailedTestCase:     result.FailedTestCase,
		Message:            result.Summary(),
	}
	if result.JudgementID != uuid.Nil {
		resp.JudgementID = result.JudgementID.String()
	}
	return http.StatusOK, resp
}
