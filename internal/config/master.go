package config

import "os"

type AppConfig struct {
	DebugMode      bool
	Version        string
	ExecutorCfg    *ExecutorConfig
	PoolCfg        *PoolConfig
	ServerCfg      *ServerConfig
	BackgroundCfg  *BackgroundCfg
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		Version:        getEnv("APP_VERSION", "dev"),
		ExecutorCfg:    NewExecutorConfig(),
		PoolCfg:        NewPoolConfig(),
		ServerCfg:      NewServerConfig(),
		BackgroundCfg:  NewBackgroundCfg(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
	}
}
