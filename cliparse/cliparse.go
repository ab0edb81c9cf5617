package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/danielhkuo/quickly-grade/db"
	"github.com/danielhkuo/quickly-grade/ids"
	"github.com/danielhkuo/quickly-grade/models"
)

// EnvFile is loaded before reading the environment, if present
const EnvFile = ".env"

type Config struct {
	Port         int    `envconfig:"PORT" default:"3318"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseType string `envconfig:"DATABASE_TYPE" default:"sqlite"`

	// Election settings
	MaxNumGrades int      `envconfig:"MAX_NUM_GRADES" default:"7"`
	Languages    []string `envconfig:"LANGUAGE_AVAILABLE" default:"en,fr"`

	// Random ID schemes, see ids.Parse
	ElectionIDScheme string `envconfig:"ELECTION_ID_SCHEME" default:"hex"`
	TokenIDScheme    string `envconfig:"TOKEN_ID_SCHEME" default:"token"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Settings returns the limits elections are validated against
func (c Config) Settings() models.Settings {
	return models.Settings{
		MaxNumGrades: c.MaxNumGrades,
		Languages:    append([]string(nil), c.Languages...),
	}
}

// ParseFlags builds the config from .env, the environment and CLI flags,
// in increasing order of precedence, then validates it
func ParseFlags(args []string) (Config, error) {
	if err := loadEnvFile(EnvFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("quickly-grade", flag.ContinueOnError)

	// Env values become the flag defaults, so flags win when given
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.IntVar(&cfg.MaxNumGrades, "max-grades", cfg.MaxNumGrades, "Maximum number of grades per election")
	languages := fs.String("languages", strings.Join(cfg.Languages, ","), "Comma-separated language codes")
	fs.StringVar(&cfg.ElectionIDScheme, "election-ids", cfg.ElectionIDScheme, "Election ID scheme (hex, token, ulid, uuid)")
	fs.StringVar(&cfg.TokenIDScheme, "token-ids", cfg.TokenIDScheme, "Token ID scheme (hex, token, ulid, uuid)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Languages = splitList(*languages)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != db.TypeSQLite && c.DatabaseType != db.TypePostgres {
		return fmt.Errorf("invalid database type %q (sqlite or postgres)", c.DatabaseType)
	}
	if _, err := ids.Parse(c.ElectionIDScheme); err != nil {
		return fmt.Errorf("ELECTION_ID_SCHEME: %w", err)
	}
	if _, err := ids.Parse(c.TokenIDScheme); err != nil {
		return fmt.Errorf("TOKEN_ID_SCHEME: %w", err)
	}
	return c.Settings().Validate()
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
