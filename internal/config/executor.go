package config

import (
	"path/filepath"
	"time"
)

type CleanupPolicy string

const (
	CleanupDelete CleanupPolicy = "delete"
	CleanupRetain CleanupPolicy = "retain"
)

// Toolchain names the binaries each language adapter invokes.
type Toolchain struct {
	CppCompiler string
	Python      string
	Node        string
	Javac       string
	Java        string
}

type ExecutorConfig struct {
	TimeLimit      time.Duration
	CompileTimeout time.Duration
	OutputLimit    int
	WorkDir        string
	Cleanup        CleanupPolicy
	Toolchain      Toolchain
}

func NewExecutorConfig() *ExecutorConfig {
	cleanup := CleanupPolicy(getEnv("EXEC_CLEANUP", string(CleanupDelete)))
	if cleanup != CleanupRetain {
		cleanup = CleanupDelete
	}
	return &ExecutorConfig{
		TimeLimit:      getMillisEnv("EXEC_TIME_LIMIT_MS", 3000),
		CompileTimeout: getMillisEnv("EXEC_COMPILE_TIMEOUT_MS", 10000),
		OutputLimit:    getIntEnv("EXEC_OUTPUT_LIMIT_BYTES", 1<<20),
		WorkDir:        getEnv("EXEC_WORK_DIR", "./workspace"),
		Cleanup:        cleanup,
		Toolchain: Toolchain{
			CppCompiler: getEnv("EXEC_CPP_COMPILER", "g++"),
			Python:      getEnv("EXEC_PYTHON", "python3"),
			Node:        getEnv("EXEC_NODE", "node"),
			Javac:       getEnv("EXEC_JAVAC", "javac"),
			Java:        getEnv("EXEC_JAVA", "java"),
		},
	}
}

func (c *ExecutorConfig) CodeDir() string {
	return filepath.Join(c.WorkDir, "codes")
}

func (c *ExecutorConfig) InputDir() string {
	return filepath.Join(c.WorkDir, "inputs")
}

func (c *ExecutorConfig) OutputDir() string {
	return filepath.Join(c.WorkDir, "outputs")
}
