package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobState is the lifecycle state of one staged job.
type JobState string

const (
	JobStateCreated       JobState = "CREATED"
	JobStateCompiling     JobState = "COMPILING"
	JobStateRunning       JobState = "RUNNING"
	JobStateSucceeded     JobState = "SUCCEEDED"
	JobStateCompileFailed JobState = "COMPILE_FAILED"
	JobStateRuntimeFailed JobState = "RUNTIME_FAILED"
	JobStateTimedOut      JobState = "TIMED_OUT"
)

// Terminal reports whether no further transition is allowed.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateSucceeded, JobStateCompileFailed, JobStateRuntimeFailed, JobStateTimedOut:
		return true
	}
	return false
}

var jobTransitions = map[JobState][]JobState{
	JobStateCreated:   {JobStateCompiling, JobStateRunning},
	JobStateCompiling: {JobStateRunning, JobStateCompileFailed},
	// a judged job re-enters RUNNING for every test case until one fails
	JobStateRunning: {JobStateRunning, JobStateSucceeded, JobStateCompileFailed, JobStateRuntimeFailed, JobStateTimedOut},
}

// Job is one ephemeral file set: the staged source, its build artifacts, and the
// inputs staged against it. Jobs are never persisted.
type Job struct {
	ID         uuid.UUID
	Language   Language
	SourcePath string
	// ArtifactPath is the compiled binary (C++) or class directory (Java).
	ArtifactPath string
	// EntryPoint is the class to launch for Java.
	EntryPoint string
	InputPaths []string
	State      JobState
	CreatedAt  time.Time
}

// NewJob creates a job in the CREATED state with a fresh identifier.
func NewJob(language Language) *Job {
	return &Job{
		ID:        uuid.New(),
		Language:  language,
		State:     JobStateCreated,
		CreatedAt: time.Now(),
	}
}

// Transition moves the job to next, rejecting moves the lifecycle does not allow.
func (j *Job) Transition(next JobState) error {
	for _, allowed := range jobTransitions[j.State] {
		if allowed == next {
			j.State = next
			return nil
		}
	}
	return fmt.Errorf("job %s: illegal transition %s -> %s", j.ID, j.State, next)
}

// Fail moves the job into the terminal state matching kind. Internal failures leave
// the state untouched since they say nothing about the candidate.
func (j *Job) Fail(kind FailureKind) error {
	switch kind {
	case FailureCompileError:
		return j.Transition(JobStateCompileFailed)
	case FailureRuntimeError:
		return j.Transition(JobStateRuntimeFailed)
	case FailureTimeLimitExceeded:
		return j.Transition(JobStateTimedOut)
	}
	return nil
}
