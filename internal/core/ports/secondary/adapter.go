package secondary

import (
	"context"

	"gitlab.com/fcv-judge.net/internal/domain"
)

// LanguageAdapter is the compile+run strategy for one language.
//
// Compile returns nil when the language has no compile phase. Run returns either an
// *domain.ExecutionResult or an error; errors that describe the candidate's code are
// *domain.ExecutionError, anything else is an infrastructure failure.
type LanguageAdapter interface {
	Language() domain.Language
	Compile(ctx context.Context, job *domain.Job) error
	Run(ctx context.Context, job *domain.Job, inputPath string) (*domain.ExecutionResult, error)
}

// AdapterSet resolves the adapter for a language.
type AdapterSet interface {
	Adapter(language domain.Language) (LanguageAdapter, error)
}

// Materializer stages caller-supplied text as uniquely named files.
type Materializer interface {
	// StageSource writes code and returns a new job owning the file.
	StageSource(language domain.Language, code string) (*domain.Job, error)
	// StageInput writes one input payload for job and returns its path.
	StageInput(job *domain.Job, input string) (string, error)
	// Release applies the cleanup policy to every file the job owns.
	Release(job *domain.Job) error
}
