package config

import (
	"runtime"
	"time"
)

type PoolConfig struct {
	// Size is the number of jobs allowed to execute at once; 0 disables the cap.
	Size         int
	QueueTimeout time.Duration
}

func NewPoolConfig() *PoolConfig {
	size := getIntEnv("EXEC_POOL_SIZE", 2*runtime.NumCPU())
	if size < 0 {
		size = 0
	}
	return &PoolConfig{
		Size:         size,
		QueueTimeout: getMillisEnv("EXEC_QUEUE_TIMEOUT_MS", 10000),
	}
}
