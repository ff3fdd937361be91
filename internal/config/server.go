package config

import "time"

type ServerConfig struct {
	HTTPPort     int
	TCPAddress   string
	ServiceName  string
	WriteTimeout time.Duration
	// RateLimitRPS is the sustained per-client request rate on the execution routes;
	// zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst float64
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		HTTPPort:       getIntEnv("HTTP_PORT", 8080),
		TCPAddress:     getEnv("TCP_ADDR", ":9000"),
		ServiceName:    getEnv("SERVICE_NAME", "judge-engine"),
		WriteTimeout:   getSecondsEnv("HTTP_WRITE_TIMEOUT_SEC", 120),
		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getFloatEnv("RATE_LIMIT_BURST", 10),
	}
}
