package toolchain

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/fcv-judge.net/internal/domain"
)

const outputLimitExceededMessage = "output limit exceeded"

// compilerDiagnostic matches the error lines emitted by g++ and javac. Warnings do not
// match and never fail a build that exited cleanly.
var compilerDiagnostic = regexp.MustCompile(`(?m)\berror:`)

// classifier turns a finished process into a typed failure, or nil on success.
// Each language gets its own instance so its diagnostic format can be tuned and
// tested in isolation.
//
// For interpreted languages staticPattern is a best-effort heuristic: a syntax or
// name error reported while running is surfaced as compile_error even though no
// compile phase exists. It will misclassify programs that print those words to
// stderr and then fail for another reason.
type classifier struct {
	// runtimePattern fails a run that exited zero but wrote a matching diagnostic.
	runtimePattern *regexp.Regexp
	staticPattern  *regexp.Regexp
}

func cppClassifier() *classifier {
	return &classifier{
		runtimePattern: regexp.MustCompile(`terminate called|Segmentation fault|AddressSanitizer|runtime error:`),
	}
}

func pythonClassifier() *classifier {
	return &classifier{
		runtimePattern: regexp.MustCompile(`Traceback \(most recent call last\)`),
		staticPattern:  regexp.MustCompile(`\b(SyntaxError|IndentationError|TabError|NameError)\b`),
	}
}

func javascriptClassifier() *classifier {
	return &classifier{
		runtimePattern: regexp.MustCompile(`(?m)^\w*Error(:|\s*$)|Uncaught`),
		staticPattern:  regexp.MustCompile(`\b(SyntaxError|ReferenceError)\b`),
	}
}

func javaClassifier() *classifier {
	return &classifier{
		runtimePattern: regexp.MustCompile(`Exception in thread "`),
	}
}

// classifyCompile inspects a compile phase. Timeouts count as compile_error.
func (c *classifier) classifyCompile(outcome *processOutcome) *domain.ExecutionError {
	if outcome.timedOut {
		return domain.NewExecutionError(domain.FailureCompileError, "compilation timed out")
	}
	if outcome.exitCode != 0 || compilerDiagnostic.MatchString(outcome.stderr) {
		return domain.NewExecutionError(domain.FailureCompileError, diagnostic(outcome))
	}
	return nil
}

func (c *classifier) classifyRun(outcome *processOutcome) *domain.ExecutionError {
	if outcome.overflowed {
		return domain.NewExecutionError(domain.FailureRuntimeError, outputLimitExceededMessage)
	}
	if outcome.timedOut {
		return domain.NewExecutionError(domain.FailureTimeLimitExceeded, domain.TimeLimitExceededMessage)
	}

	failed := outcome.exitCode != 0 ||
		(c.runtimePattern != nil && c.runtimePattern.MatchString(outcome.stderr))
	if !failed {
		return nil
	}
	if c.staticPattern != nil && c.staticPattern.MatchString(outcome.stderr) {
		return domain.NewExecutionError(domain.FailureCompileError, diagnostic(outcome))
	}
	return domain.NewExecutionError(domain.FailureRuntimeError, diagnostic(outcome))
}

func diagnostic(outcome *processOutcome) string {
	if msg := strings.TrimSpace(outcome.stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("process exited with code %d", outcome.exitCode)
}
