package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Verdict is the final classification of a judged submission.
type Verdict string

const (
	VerdictAccepted          Verdict = "Accepted"
	VerdictWrongAnswer       Verdict = "Wrong Answer"
	VerdictCompilationError  Verdict = "Compilation Error"
	VerdictRuntimeError      Verdict = "Runtime Error"
	VerdictTimeLimitExceeded Verdict = "Time Limit Exceeded"
)

// VerdictForFailure maps an adapter failure kind to the verdict it produces.
func VerdictForFailure(kind FailureKind) Verdict {
	switch kind {
	case FailureCompileError:
		return VerdictCompilationError
	case FailureTimeLimitExceeded:
		return VerdictTimeLimitExceeded
	default:
		return VerdictRuntimeError
	}
}

// JudgeResult is the outcome of a batch judging run.
type JudgeResult struct {
	Verdict Verdict
	// FailedTestCase is the 1-indexed failing case, 0 when accepted.
	FailedTestCase     int
	TestCaseCount      int
	MaxExecutionTime   time.Duration
	TotalExecutionTime time.Duration
	// JudgementID identifies the audit record, uuid.Nil when none was stored.
	JudgementID uuid.UUID
}

// Accepted reports whether every test case passed.
func (r *JudgeResult) Accepted() bool {
	return r.Verdict == VerdictAccepted
}

// Summary is the fixed, caller-safe description of the verdict. It never contains
// candidate output or diagnostics.
func (r *JudgeResult) Summary() string {
	if r.Accepted() {
		return "All test cases passed!"
	}
	return fmt.Sprintf("%s at test case %d", r.Verdict, r.FailedTestCase)
}
