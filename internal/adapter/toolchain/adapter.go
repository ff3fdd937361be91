// Package toolchain implements the compile and run strategy for every supported
// language on top of local toolchain binaries.
package toolchain

import (
	"context"
	"os"
	"time"

	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/domain"
)

var (
	_ secondary.LanguageAdapter = (*CppAdapter)(nil)
	_ secondary.LanguageAdapter = (*PythonAdapter)(nil)
	_ secondary.LanguageAdapter = (*JavaScriptAdapter)(nil)
	_ secondary.LanguageAdapter = (*JavaAdapter)(nil)
)

type limits struct {
	timeLimit      time.Duration
	compileTimeout time.Duration
	outputLimit    int
}

func limitsFrom(cfg *config.ExecutorConfig) limits {
	return limits{
		timeLimit:      cfg.TimeLimit,
		compileTimeout: cfg.CompileTimeout,
		outputLimit:    cfg.OutputLimit,
	}
}

// processAdapter holds what every language shares: limits, a classifier and the
// plumbing that turns a process outcome into a result or a typed failure.
type processAdapter struct {
	language   domain.Language
	limits     limits
	classifier *classifier
	logger     primary.Logger
}

func (a *processAdapter) Language() domain.Language {
	return a.language
}

func (a *processAdapter) compile(ctx context.Context, job *domain.Job, name string, args ...string) error {
	outcome, err := runProcess(ctx, processSpec{
		name:        name,
		args:        args,
		timeout:     a.limits.compileTimeout,
		outputLimit: a.limits.outputLimit,
	})
	if err != nil {
		a.logger.Error("Compiler invocation failed", "jobId", job.ID, "compiler", name, "error", err)
		return domain.InternalError(err)
	}
	if execErr := a.classifier.classifyCompile(outcome); execErr != nil {
		a.logger.Debug("Compilation rejected", "jobId", job.ID, "language", a.language)
		return execErr
	}
	a.logger.Debug("Compiled", "jobId", job.ID, "language", a.language, "took", outcome.duration)
	return nil
}

func (a *processAdapter) run(ctx context.Context, job *domain.Job, inputPath, name string, args ...string) (*domain.ExecutionResult, error) {
	outcome, err := runProcess(ctx, processSpec{
		name:        name,
		args:        args,
		stdinPath:   inputPath,
		timeout:     a.limits.timeLimit,
		outputLimit: a.limits.outputLimit,
	})
	if err != nil {
		a.logger.Error("Program invocation failed", "jobId", job.ID, "binary", name, "error", err)
		return nil, domain.InternalError(err)
	}
	if execErr := a.classifier.classifyRun(outcome); execErr != nil {
		a.logger.Debug("Run failed", "jobId", job.ID, "kind", execErr.Kind, "took", outcome.duration)
		return nil, execErr
	}
	return &domain.ExecutionResult{Stdout: outcome.stdout, Duration: outcome.duration}, nil
}

type CppAdapter struct {
	processAdapter
	compiler string
}

func NewCppAdapter(cfg *config.ExecutorConfig, logger primary.Logger) *CppAdapter {
	return &CppAdapter{
		processAdapter: processAdapter{
			language:   domain.LanguageCpp,
			limits:     limitsFrom(cfg),
			classifier: cppClassifier(),
			logger:     logger,
		},
		compiler: cfg.Toolchain.CppCompiler,
	}
}

func (a *CppAdapter) Compile(ctx context.Context, job *domain.Job) error {
	return a.compile(ctx, job, a.compiler, "-O2", "-std=c++17", job.SourcePath, "-o", job.ArtifactPath)
}

func (a *CppAdapter) Run(ctx context.Context, job *domain.Job, inputPath string) (*domain.ExecutionResult, error) {
	return a.run(ctx, job, inputPath, job.ArtifactPath)
}

type PythonAdapter struct {
	processAdapter
	interpreter string
}

func NewPythonAdapter(cfg *config.ExecutorConfig, logger primary.Logger) *PythonAdapter {
	return &PythonAdapter{
		processAdapter: processAdapter{
			language:   domain.LanguagePython,
			limits:     limitsFrom(cfg),
			classifier: pythonClassifier(),
			logger:     logger,
		},
		interpreter: cfg.Toolchain.Python,
	}
}

func (a *PythonAdapter) Compile(context.Context, *domain.Job) error {
	return nil
}

func (a *PythonAdapter) Run(ctx context.Context, job *domain.Job, inputPath string) (*domain.ExecutionResult, error) {
	return a.run(ctx, job, inputPath, a.interpreter, job.SourcePath)
}

type JavaScriptAdapter struct {
	processAdapter
	node string
}

func NewJavaScriptAdapter(cfg *config.ExecutorConfig, logger primary.Logger) *JavaScriptAdapter {
	return &JavaScriptAdapter{
		processAdapter: processAdapter{
			language:   domain.LanguageJavaScript,
			limits:     limitsFrom(cfg),
			classifier: javascriptClassifier(),
			logger:     logger,
		},
		node: cfg.Toolchain.Node,
	}
}

func (a *JavaScriptAdapter) Compile(context.Context, *domain.Job) error {
	return nil
}

func (a *JavaScriptAdapter) Run(ctx context.Context, job *domain.Job, inputPath string) (*domain.ExecutionResult, error) {
	return a.run(ctx, job, inputPath, a.node, job.SourcePath)
}

type JavaAdapter struct {
	processAdapter
	javac string
	java  string
}

func NewJavaAdapter(cfg *config.ExecutorConfig, logger primary.Logger) *JavaAdapter {
	return &JavaAdapter{
		processAdapter: processAdapter{
			language:   domain.LanguageJava,
			limits:     limitsFrom(cfg),
			classifier: javaClassifier(),
			logger:     logger,
		},
		javac: cfg.Toolchain.Javac,
		java:  cfg.Toolchain.Java,
	}
}

// Compile writes class files into the job's artifact directory.
func (a *JavaAdapter) Compile(ctx context.Context, job *domain.Job) error {
	if err := os.MkdirAll(job.ArtifactPath, 0o755); err != nil {
		return domain.InternalError(err)
	}
	return a.compile(ctx, job, a.javac, "-d", job.ArtifactPath, job.SourcePath)
}

func (a *JavaAdapter) Run(ctx context.Context, job *domain.Job, inputPath string) (*domain.ExecutionResult, error) {
	return a.run(ctx, job, inputPath, a.java, "-cp", job.ArtifactPath, job.EntryPoint)
}
