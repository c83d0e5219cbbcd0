package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port              int           `yaml:"port"`
	DatabaseURL       string        `yaml:"database_url"`
	DatabaseType      string        `yaml:"database_type"`
	IdentitySalt      string        `yaml:"identity_salt"`
	NATSURL           string        `yaml:"nats_url"`
	NATSSubjectPrefix string        `yaml:"nats_subject_prefix"`
	RelayInterval     time.Duration `yaml:"relay_interval"`
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"`

	// ConfigFile is where the YAML settings were read from, if anywhere
	ConfigFile string `yaml:"-"`
}

// Default returns the settings used when nothing overrides them
func Default() Config {
	return Config{
		Port:              3318,
		DatabaseType:      "sqlite",
		NATSSubjectPrefix: "elections",
		RelayInterval:     2 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// ParseFlags builds the config from, in increasing precedence: defaults,
// the YAML config file, environment variables (including a .env file) and
// command-line flags.
func ParseFlags(args []string) (Config, error) {
	var flagCfg Config
	var envFile string

	flags := pflag.NewFlagSet("election-registry", pflag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVarP(&flagCfg.Port, "port", "p", 0, "Server port")
	flags.StringVarP(&flagCfg.DatabaseURL, "database-url", "d", "", "Database URL")
	flags.StringVarP(&flagCfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres)")

	// Event relay
	flags.StringVar(&flagCfg.NATSURL, "nats-url", "", "NATS server URL (events stay in-process when empty)")
	flags.StringVar(&flagCfg.NATSSubjectPrefix, "nats-subject-prefix", "", "Subject prefix for published events")
	flags.DurationVar(&flagCfg.RelayInterval, "relay-interval", 0, "How often stored events are relayed")

	// Logging
	flags.StringVar(&flagCfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&flagCfg.LogFormat, "log-format", "", "Log format (text or json)")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&flagCfg.IdentitySalt, "identity-salt", "", "Identity signature salt (prefer env)")

	flags.StringVarP(&flagCfg.ConfigFile, "config", "c", "", "YAML config file")
	flags.StringVar(&envFile, "env-file", ".env", "Environment file loaded if present")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// Variables already set in the environment win over the file
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Default()

	cfg.ConfigFile = flagCfg.ConfigFile
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	}
	if cfg.ConfigFile != "" {
		if err := loadFile(cfg.ConfigFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	// Flags the user actually passed take precedence
	if flags.Changed("port") {
		cfg.Port = flagCfg.Port
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = flagCfg.DatabaseURL
	}
	if flags.Changed("database-type") {
		cfg.DatabaseType = flagCfg.DatabaseType
	}
	if flags.Changed("nats-url") {
		cfg.NATSURL = flagCfg.NATSURL
	}
	if flags.Changed("nats-subject-prefix") {
		cfg.NATSSubjectPrefix = flagCfg.NATSSubjectPrefix
	}
	if flags.Changed("relay-interval") {
		cfg.RelayInterval = flagCfg.RelayInterval
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagCfg.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagCfg.LogFormat
	}
	if flags.Changed("identity-salt") {
		cfg.IdentitySalt = flagCfg.IdentitySalt
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	file := cfg.ConfigFile
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.ConfigFile = file
	return nil
}

func applyEnv(cfg *Config) error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := os.Getenv("RELAY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid RELAY_INTERVAL env variable")
		}
		cfg.RelayInterval = d
	}

	vars := map[string]*string{
		"DATABASE_URL":        &cfg.DatabaseURL,
		"DATABASE_TYPE":       &cfg.DatabaseType,
		"IDENTITY_SALT":       &cfg.IdentitySalt,
		"NATS_URL":            &cfg.NATSURL,
		"NATS_SUBJECT_PREFIX": &cfg.NATSSubjectPrefix,
		"LOG_LEVEL":           &cfg.LogLevel,
		"LOG_FORMAT":          &cfg.LogFormat,
	}
	for name, dst := range vars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	return nil
}

// Validate reports the first missing or malformed setting
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.IdentitySalt == "" {
		return errors.New("IDENTITY_SALT required")
	}

	if c.RelayInterval <= 0 {
		return errors.New("relay interval must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
