package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewExecutorConfig_Defaults(t *testing.T) {
	cfg := NewExecutorConfig()
	if cfg.TimeLimit != 3*time.Second {
		t.Errorf("expected 3s time limit, got %s", cfg.TimeLimit)
	}
	if cfg.Cleanup != CleanupDelete {
		t.Errorf("expected delete cleanup, got %s", cfg.Cleanup)
	}
	if cfg.Toolchain.CppCompiler != "g++" || cfg.Toolchain.Python != "python3" {
		t.Errorf("unexpected toolchain defaults: %+v", cfg.Toolchain)
	}
	if cfg.CodeDir() != filepath.Join("./workspace", "codes") {
		t.Errorf("unexpected code dir %s", cfg.CodeDir())
	}
}

func TestNewExecutorConfig_FromEnv(t *testing.T) {
	t.Setenv("EXEC_TIME_LIMIT_MS", "1500")
	t.Setenv("EXEC_CLEANUP", "retain")
	t.Setenv("EXEC_WORK_DIR", "/tmp/judge")
	t.Setenv("EXEC_PYTHON", "pypy3")

	cfg := NewExecutorConfig()
	if cfg.TimeLimit != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %s", cfg.TimeLimit)
	}
	if cfg.Cleanup != CleanupRetain {
		t.Errorf("expected retain, got %s", cfg.Cleanup)
	}
	if cfg.InputDir() != "/tmp/judge/inputs" {
		t.Errorf("unexpected input dir %s", cfg.InputDir())
	}
	if cfg.Toolchain.Python != "pypy3" {
		t.Errorf("expected pypy3, got %s", cfg.Toolchain.Python)
	}
}

func TestNewExecutorConfig_UnknownCleanupFallsBack(t *testing.T) {
	t.Setenv("EXEC_CLEANUP", "shred")
	if got := NewExecutorConfig().Cleanup; got != CleanupDelete {
		t.Errorf("expected delete, got %s", got)
	}
}

func TestNewPoolConfig(t *testing.T) {
	t.Setenv("EXEC_POOL_SIZE", "-4")
	if got := NewPoolConfig().Size; got != 0 {
		t.Errorf("negative size should clamp to 0, got %d", got)
	}
	t.Setenv("EXEC_POOL_SIZE", "not-a-number")
	if got := NewPoolConfig().Size; got <= 0 {
		t.Errorf("expected NumCPU-based default, got %d", got)
	}
}

func TestNewServerConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("HTTP_PORT", "9090")

	cfg := NewServerConfig()
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 10 {
		t.Errorf("unexpected rate limit %v/%v", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.HTTPPort != 9090 || cfg.TCPAddress != ":9000" {
		t.Errorf("unexpected addresses %d %s", cfg.HTTPPort, cfg.TCPAddress)
	}
	if cfg.WriteTimeout != 2*time.Minute {
		t.Errorf("unexpected write timeout %s", cfg.WriteTimeout)
	}
}
