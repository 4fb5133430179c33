package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingPassword is returned by Validate when DB_PASSWORD is not set.
var ErrMissingPassword = errors.New("DB_PASSWORD is required")

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
	API      APIConfig      `json:"api" yaml:"api"`
	Loader   LoaderConfig   `json:"loader" yaml:"loader"`
	Mirror   MirrorConfig   `json:"mirror" yaml:"mirror"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// DatabaseConfig holds PostgreSQL connection parameters
type DatabaseConfig struct {
	Name     string `json:"name" yaml:"name"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	SSLMode  string `json:"ssl_mode" yaml:"ssl_mode"`
}

// APIConfig holds hh.ru API settings
type APIConfig struct {
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	UserAgent      string        `json:"user_agent" yaml:"user_agent"`
	PerPage        int           `json:"per_page" yaml:"per_page"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// RequestsPerMinute paces calls to the API; 0 disables pacing.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`
}

// LoaderConfig holds what to fetch and where to put snapshots
type LoaderConfig struct {
	EmployerIDs []string `json:"employer_ids" yaml:"employer_ids"`
	SnapshotDir string   `json:"snapshot_dir" yaml:"snapshot_dir"`
	// Schedule is a robfig/cron spec, e.g. "@every 6h". Empty runs once.
	Schedule string `json:"schedule" yaml:"schedule"`
}

// MirrorConfig enables the optional Supabase snapshot mirror
type MirrorConfig struct {
	SupabaseURL string `json:"supabase_url" yaml:"supabase_url"`
	SupabaseKey string `json:"supabase_key,omitempty" yaml:"supabase_key,omitempty"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

// DefaultEmployerIDs are the companies loaded when nothing else is configured.
var DefaultEmployerIDs = []string{"1740", "80", "15478", "3529", "78638", "2180", "39305", "4219", "676", "1455"}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Name:    "hh_vacancies",
			User:    "postgres",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		API: APIConfig{
			BaseURL:           "https://api.hh.ru",
			UserAgent:         "hh-vacancies-go/1.0",
			PerPage:           100,
			RequestTimeout:    15 * time.Second,
			RequestsPerMinute: 60,
		},
		Loader: LoaderConfig{
			EmployerIDs: append([]string(nil), DefaultEmployerIDs...),
			SnapshotDir: "data",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file and then applies
// environment overrides. A missing file is not an error.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if filename != "" {
		if err := config.loadFile(filename); err != nil {
			return nil, err
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) loadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Database.Name = getEnvString("DB_NAME", c.Database.Name)
	c.Database.User = getEnvString("DB_USER", c.Database.User)
	c.Database.Password = getEnvString("DB_PASSWORD", c.Database.Password)
	c.Database.Host = getEnvString("DB_HOST", c.Database.Host)
	c.Database.SSLMode = getEnvString("DB_SSL_MODE", c.Database.SSLMode)
	if val := os.Getenv("DB_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("DB_PORT must be an integer, got %q", val)
		}
		c.Database.Port = port
	}

	c.API.BaseURL = getEnvString("HH_BASE_URL", c.API.BaseURL)
	c.API.UserAgent = getEnvString("HH_USER_AGENT", c.API.UserAgent)
	if val := os.Getenv("HH_REQUESTS_PER_MINUTE"); val != "" {
		rpm, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("HH_REQUESTS_PER_MINUTE must be an integer, got %q", val)
		}
		c.API.RequestsPerMinute = rpm
	}
	if val := os.Getenv("HH_EMPLOYER_IDS"); val != "" {
		c.Loader.EmployerIDs = splitList(val)
	}

	c.Loader.SnapshotDir = getEnvString("SNAPSHOT_DIR", c.Loader.SnapshotDir)
	c.Loader.Schedule = getEnvString("LOADER_SCHEDULE", c.Loader.Schedule)

	c.Mirror.SupabaseURL = getEnvString("SUPABASE_URL", c.Mirror.SupabaseURL)
	c.Mirror.SupabaseKey = getEnvString("SUPABASE_KEY", c.Mirror.SupabaseKey)

	c.Logging.Level = getEnvString("LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnvString("LOG_FILE", c.Logging.File)
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return ErrMissingPassword
	}

	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database port %d is out of range", c.Database.Port)
	}

	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid API base URL %q: %w", c.API.BaseURL, err)
	}

	if c.API.PerPage <= 0 || c.API.PerPage > 100 {
		return fmt.Errorf("per_page must be between 1 and 100")
	}

	if c.API.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative")
	}

	if len(c.Loader.EmployerIDs) == 0 {
		return fmt.Errorf("at least one employer id must be configured")
	}

	if (c.Mirror.SupabaseURL == "") != (c.Mirror.SupabaseKey == "") {
		return fmt.Errorf("supabase URL and key must be set together")
	}

	return nil
}

// DSN returns the connection URL of the application database.
func (c *Config) DSN() string {
	return c.dsnFor(c.Database.Name)
}

// MaintenanceDSN returns the connection URL of the "postgres" database, used
// to create the application database.
func (c *Config) MaintenanceDSN() string {
	return c.dsnFor("postgres")
}

func (c *Config) dsnFor(dbName string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + dbName,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// MirrorEnabled reports whether the Supabase mirror is configured.
func (c *Config) MirrorEnabled() bool {
	return c.Mirror.SupabaseURL != "" && c.Mirror.SupabaseKey != ""
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
