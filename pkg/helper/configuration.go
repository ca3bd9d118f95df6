package helper

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/nahom-d/lookbook/internal/database"
)

// Config holds everything the server needs from the environment.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Neo4jURI      string `env:"NEO4J_URI"`
	Neo4jUsername string `env:"NEO4J_USERNAME" envDefault:"neo4j"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`
	Neo4jDatabase string `env:"NEO4J_DATABASE" envDefault:"neo4j"`

	// FallbackThreshold is the confidence below which a hybrid
	// suggestion gives way to the rule-based baseline.
	FallbackThreshold float64 `env:"FALLBACK_THRESHOLD" envDefault:"0.35"`
}

// Load reads .env (if present) and parses environment variables into a
// Config.
func Load() (Config, error) {
	// Ignore the error: a missing .env file is fine.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Neo4jConfig extracts the store connection settings.
func (c Config) Neo4jConfig() database.Config {
	return database.Config{
		URI:      c.Neo4jURI,
		Username: c.Neo4jUsername,
		Password: c.Neo4jPassword,
		Database: c.Neo4jDatabase,
	}
}
