package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "seedgen.yaml"

// Config represents the seed generator configuration
type Config struct {
	Source struct {
		Dir      string   `yaml:"dir" env:"SEEDGEN_SOURCE_DIR"`
		Patterns []string `yaml:"patterns" env:"SEEDGEN_SOURCE_PATTERNS"`
	} `yaml:"source"`

	Output struct {
		Path      string `yaml:"path" env:"SEEDGEN_OUTPUT_PATH"`
		Dialect   string `yaml:"dialect" env:"SEEDGEN_DIALECT"`
		BatchSize int    `yaml:"batch_size" env:"SEEDGEN_BATCH_SIZE"`
	} `yaml:"output"`

	Import struct {
		Strict        bool `yaml:"strict" env:"SEEDGEN_STRICT"`
		HashPasswords bool `yaml:"hash_passwords" env:"SEEDGEN_HASH_PASSWORDS"`
	} `yaml:"import"`

	Database struct {
		Host     string `yaml:"host" env:"DB_HOST"`
		Port     string `yaml:"port" env:"DB_PORT"`
		User     string `yaml:"user" env:"DB_USER"`
		Password string `yaml:"password" env:"DB_PASSWORD"`
		Name     string `yaml:"name" env:"DB_NAME"`
		SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	} `yaml:"database"`

	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	// Settings override columns of the singleton configuration tables.
	Settings struct {
		General      map[string]string `yaml:"general"`
		Optimization map[string]string `yaml:"optimization"`
	} `yaml:"settings"`
}

// LoadConfig loads configuration from a YAML file, a .env file and the environment.
// A missing config file or .env file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Source.Dir = "assets"
	cfg.Source.Patterns = []string{"timetable_data*.csv", "*export*.csv", "*.csv"}

	cfg.Output.Path = "database/seed.sql"
	cfg.Output.Dialect = "mysql"
	cfg.Output.BatchSize = 500

	cfg.Database.Host = "localhost"
	cfg.Database.Port = "3306"
	cfg.Database.User = "root"
	cfg.Database.Name = "timetable"
	cfg.Database.SSLMode = "disable"

	cfg.Server.Port = "8080"
	cfg.Server.Mode = "development"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
}

func validateConfig(cfg *Config) error {
	if cfg.Source.Dir == "" {
		return fmt.Errorf("source directory is required")
	}
	if len(cfg.Source.Patterns) == 0 {
		return fmt.Errorf("at least one source pattern is required")
	}
	if cfg.Output.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Output.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", cfg.Output.BatchSize)
	}
	switch strings.ToLower(cfg.Output.Dialect) {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported dialect %q", cfg.Output.Dialect)
	}
	return nil
}
