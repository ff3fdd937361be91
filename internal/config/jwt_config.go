package config

import "os"

type JwtConfig struct {
	// Secret is the HS256 key callers sign with; empty disables the check.
	Secret string
	Method string
}

func NewJwtConfig() *JwtConfig {
	return &JwtConfig{
		Secret: os.Getenv("JWT_SECRET"),
		Method: getEnv("JWT_METHOD", "HS256"),
	}
}
