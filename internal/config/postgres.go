package config

type PostgresConfig struct {
	// Url is empty when the judgement audit log is disabled.
	Url    string
	Schema string
}

func NewPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Url:    getEnv("DATABASE_URL", ""),
		Schema: getEnv("DATABASE_SCHEMA", "public"),
	}
}
