// Package config loads the server configuration. Values are layered:
// built-in defaults, then an optional YAML file, then environment variables,
// then explicitly set command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	pkgstore "github.com/bossmachine/bossmachine/pkg/store"
)

// Config holds the server configuration.
type Config struct {
	Port           int    `yaml:"port"`
	BasePath       string `yaml:"base_path"`
	SeedFile       string `yaml:"seed_file"`
	SampleData     bool   `yaml:"sample_data"`
	IDStrategy     string `yaml:"id_strategy"`
	Verbose        bool   `yaml:"verbose"`
	LogFormat      string `yaml:"log_format"`
	LogLevel       string `yaml:"log_level"`
	RequestLogSize int    `yaml:"request_log_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:           4001,
		BasePath:       "/api",
		SampleData:     true,
		IDStrategy:     string(pkgstore.IDSequential),
		LogFormat:      "json",
		LogLevel:       "INFO",
		RequestLogSize: 1000,
	}
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PORT, LOG_LEVEL and LOG_FORMAT from getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if p := getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.Port = port
	}
	if l := getenv("LOG_LEVEL"); l != "" {
		cfg.LogLevel = l
	}
	if f := getenv("LOG_FORMAT"); f != "" {
		cfg.LogFormat = f
	}
	return nil
}

// Parse builds a Config from command-line arguments (without the program
// name) and the environment.
func Parse(name string, args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		file  string
		flags Config
	)
	fs.StringVar(&file, "config", "", "Path to a YAML config file")
	fs.IntVar(&flags.Port, "port", 0, "HTTP listen port")
	fs.StringVar(&flags.BasePath, "base-path", "", "Path prefix for the API routes")
	fs.StringVar(&flags.SeedFile, "seed-file", "", "Path to a JSON state snapshot to load at startup")
	fs.BoolVar(&flags.SampleData, "sample-data", false, "Fill the store with sample records")
	fs.StringVar(&flags.IDStrategy, "id-strategy", "", "Identifier strategy: sequential or uuid")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Log every request")
	fs.StringVar(&flags.LogFormat, "log-format", "", "Log format: json or text")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")
	fs.IntVar(&flags.RequestLogSize, "request-log-size", 0, "Requests kept for /admin/requests")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if file != "" {
		if err := LoadFile(cfg, file); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, getenv); err != nil {
		return nil, err
	}

	// Only flags given on the command line override the layers below.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = flags.Port
		case "base-path":
			cfg.BasePath = flags.BasePath
		case "seed-file":
			cfg.SeedFile = flags.SeedFile
		case "sample-data":
			cfg.SampleData = flags.SampleData
		case "id-strategy":
			cfg.IDStrategy = flags.IDStrategy
		case "verbose":
			cfg.Verbose = flags.Verbose
		case "log-format":
			cfg.LogFormat = flags.LogFormat
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "request-log-size":
			cfg.RequestLogSize = flags.RequestLogSize
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and normalizes BasePath.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if _, err := pkgstore.ParseIDStrategy(c.IDStrategy); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.RequestLogSize < 1 {
		errs = append(errs, fmt.Errorf("request_log_size must be positive, got %d", c.RequestLogSize))
	}
	c.BasePath = strings.TrimRight(c.BasePath, "/")
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		c.BasePath = "/" + c.BasePath
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}
