// Package staging writes candidate source and input payloads to uniquely named
// files so callers never deal in filesystem paths.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/ports/secondary"
	"gitlab.com/fcv-judge.net/internal/domain"
)

var _ secondary.Materializer = (*Materializer)(nil)

var (
	javaPublicClass = regexp.MustCompile(`(?m)^\s*public\s+(?:(?:final|abstract)\s+)*class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	javaAnyClass    = regexp.MustCompile(`(?m)^\s*(?:(?:final|abstract|static)\s+)*class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	javaMainMethod  = regexp.MustCompile(`static\s+(?:final\s+)?void\s+main\s*\(`)
)

const defaultJavaClass = "Main"

// Materializer stages files under three shared directories. Concurrent jobs never
// collide because every file name carries a fresh UUID; nothing is locked.
type Materializer struct {
	codeDir   string
	inputDir  string
	outputDir string
	policy    config.CleanupPolicy
	logger    primary.Logger
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// NewMaterializer creates the staging directories if needed.
func NewMaterializer(cfg *config.ExecutorConfig, logger primary.Logger) (*Materializer, error) {
	m := &Materializer{
		codeDir:   cfg.CodeDir(),
		inputDir:  cfg.InputDir(),
		outputDir: cfg.OutputDir(),
		policy:    cfg.Cleanup,
		logger:    logger,
		writeFile: os.WriteFile,
	}
	for _, dir := range m.dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create staging dir %s: %w", dir, err)
		}
	}
	return m, nil
}

func (m *Materializer) dirs() []string {
	return []string{m.codeDir, m.inputDir, m.outputDir}
}

// StageSource writes code for language and returns the job that owns it.
func (m *Materializer) StageSource(language domain.Language, code string) (*domain.Job, error) {
	job := domain.NewJob(language)
	id := job.ID.String()

	// owned is what a failed write leaves behind
	var owned string
	switch language {
	case domain.LanguageJava:
		// javac insists the public class lives in a file of the same name
		className := javaEntryClass(code)
		jobDir := filepath.Join(m.codeDir, id)
		if err := os.MkdirAll(jobDir, 0o755); err != nil {
			return nil, domain.InternalError(fmt.Errorf("failed to create source dir: %w", err))
		}
		owned = jobDir
		job.SourcePath = filepath.Join(jobDir, className+".java")
		job.EntryPoint = className
	default:
		job.SourcePath = filepath.Join(m.codeDir, id+"."+language.Extension())
		owned = job.SourcePath
	}
	job.ArtifactPath = filepath.Join(m.outputDir, id)

	if err := m.writeFile(job.SourcePath, []byte(code), 0o644); err != nil {
		if rmErr := os.RemoveAll(owned); rmErr != nil {
			m.logger.Warn("Failed to remove partially staged source", "jobId", id, "error", rmErr)
		}
		return nil, domain.InternalError(fmt.Errorf("failed to write source file: %w", err))
	}

	m.logger.Debug("Source staged", "jobId", id, "language", language, "path", job.SourcePath)
	return job, nil
}

// javaEntryClass names the class to launch: the public class, else the class that
// declares main, else Main.
func javaEntryClass(code string) string {
	if match := javaPublicClass.FindStringSubmatch(code); match != nil {
		return match[1]
	}

	mainAt := javaMainMethod.FindStringIndex(code)
	if mainAt == nil {
		return defaultJavaClass
	}
	className := defaultJavaClass
	for _, loc := range javaAnyClass.FindAllStringSubmatchIndex(code, -1) {
		if loc[0] > mainAt[0] {
			break
		}
		className = code[loc[2]:loc[3]]
	}
	return className
}

// StageInput writes one input payload for job.
func (m *Materializer) StageInput(job *domain.Job, input string) (string, error) {
	path := filepath.Join(m.inputDir, uuid.NewString()+".txt")
	if err := m.writeFile(path, []byte(input), 0o644); err != nil {
		return "", domain.InternalError(fmt.Errorf("failed to write input file: %w", err))
	}
	job.InputPaths = append(job.InputPaths, path)
	return path, nil
}

// Release deletes every file the job owns unless the retain policy is active.
func (m *Materializer) Release(job *domain.Job) error {
	if job == nil || m.policy == config.CleanupRetain {
		return nil
	}

	var errs []error
	remove := func(path string) {
		if path == "" {
			return
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
		}
	}

	if job.Language == domain.LanguageJava {
		remove(filepath.Dir(job.SourcePath))
	} else {
		remove(job.SourcePath)
	}
	remove(job.ArtifactPath)
	for _, input := range job.InputPaths {
		remove(input)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to release job %s: %w", job.ID, err)
	}
	return nil
}

// Sweep removes staged entries last modified more than olderThan ago and returns how
// many were removed.
func (m *Materializer) Sweep(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var errs []error

	for _, dir := range m.dirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}

	return removed, errors.Join(errs...)
}
