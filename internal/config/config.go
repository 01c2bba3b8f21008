package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/termdojo/internal/llm"
	"github.com/abhisek/termdojo/internal/store"
)

// DotEnvFile is loaded from the working directory when present.
const DotEnvFile = ".env"

// Config is the complete termdojo configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	LLM      llm.Config     `yaml:"llm"`
	Dojo     DojoConfig     `yaml:"dojo"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	// Empty selects the default sqlite location.
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DojoConfig struct {
	// MaxQuestions is the default session cap. Zero means no cap.
	MaxQuestions int `yaml:"max_questions"`
}

// Default returns the built-in defaults. The LLM provider is left empty
// so Load can discover it from the available API keys.
func Default() Config {
	cfg := Config{
		Database: DatabaseConfig{Driver: store.DriverSQLite},
		Server:   ServerConfig{Addr: ":8080"},
		LLM:      llm.DefaultConfig(),
	}
	cfg.LLM.Provider = ""
	return cfg
}

// Load builds the configuration from defaults, the YAML file at path, a
// .env file and the environment, later sources overriding earlier ones.
// An empty path falls back to $TERMDOJO_CONFIG; no file is required.
func Load(path string) (Config, error) {
	return LoadFiles(path, DotEnvFile)
}

// LoadFiles is Load with an explicit .env location.
func LoadFiles(path, envFile string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TERMDOJO_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// godotenv never overrides variables already set in the environment.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	applyEnv(&cfg)

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.ProviderGemini
		if p, ok := llm.DiscoverProvider(cfg.LLM); ok {
			cfg.LLM.Provider = p
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LLM = llm.ApplyEnv(cfg.LLM)

	if v := os.Getenv("TERMDOJO_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("TERMDOJO_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("TERMDOJO_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TERMDOJO_MAX_QUESTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dojo.MaxQuestions = n
		}
	}
}

// ResolveDSN returns the database DSN, defaulting to the per-user sqlite
// file. PostgreSQL requires an explicit DSN.
func (c Config) ResolveDSN() (string, error) {
	if c.Database.DSN != "" {
		return c.Database.DSN, nil
	}
	if c.Database.Driver == store.DriverPostgres {
		return "", fmt.Errorf("database.dsn is required for the postgres driver")
	}
	return store.DefaultDBPath()
}
