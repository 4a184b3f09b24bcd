package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/pdcgo/collection_service/printer"
	"gopkg.in/yaml.v3"
)

const (
	BackendFirestore = "firestore"
	BackendSql       = "sql"

	AuthJwt   = "jwt"
	AuthLocal = "local"
)

type Config struct {
	Collector CollectorConfig   `yaml:"collector"`
	Local     LocalConfig       `yaml:"local"`
	Remote    RemoteConfig      `yaml:"remote"`
	Printer   printer.Selection `yaml:"printer"`
	Sync      SyncConfig        `yaml:"sync"`
	Server    ServerConfig      `yaml:"server"`
	Legacy    LegacyConfig      `yaml:"legacy"`
	Cache     CacheConfig       `yaml:"cache"`
	History   HistoryConfig     `yaml:"history"`
	Auth      AuthConfig        `yaml:"auth"`
}

type CollectorConfig struct {
	Email string `yaml:"email"`
	// Timezone is an IANA name used for local timestamps and day ranges.
	Timezone string `yaml:"timezone"`
}

type LocalConfig struct {
	Path string `yaml:"path"`
}

type RemoteConfig struct {
	Backend   string `yaml:"backend"`
	ProjectID string `yaml:"project_id"`
	// Dsn is the postgres connection string for the sql backend.
	Dsn string `yaml:"dsn"`
	// PollInterval drives live feeds on the sql backend.
	PollInterval time.Duration `yaml:"poll_interval"`
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Timeout bounds one scheduled run, zero leaves it to the store clients.
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LegacyConfig struct {
	Enabled   bool   `yaml:"enabled"`
	QueuePath string `yaml:"queue_path"`
	Endpoint  string `yaml:"endpoint"`
}

type CacheConfig struct {
	// Path of the badger cache, empty keeps the cache in memory.
	Path       string        `yaml:"path"`
	Expiration time.Duration `yaml:"expiration"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Mode      string `yaml:"mode"`
	JwtSecret string `yaml:"jwt_secret"`
}

func DefaultConfig() *Config {
	return &Config{
		Collector: CollectorConfig{
			Timezone: "America/Mexico_City",
		},
		Local: LocalConfig{
			Path: "cobranza.db",
		},
		Remote: RemoteConfig{
			Backend:      BackendFirestore,
			PollInterval: 5 * time.Second,
		},
		Printer: printer.Selection{
			Tag:  printer.TagNet,
			Port: printer.DefaultNetPort,
		},
		Sync: SyncConfig{
			Interval: 5 * time.Minute,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8081,
		},
		Cache: CacheConfig{
			Expiration: time.Minute,
		},
		History: HistoryConfig{
			Path: "/tmp/collection_history",
		},
		Auth: AuthConfig{
			Mode: AuthLocal,
		},
	}
}

func (c *Config) Validate() error {
	if c.Collector.Email == "" {
		return fmt.Errorf("collector.email is required")
	}

	_, err := c.Location()
	if err != nil {
		return fmt.Errorf("collector.timezone: %w", err)
	}

	if c.Local.Path == "" {
		return fmt.Errorf("local.path is required")
	}

	switch c.Remote.Backend {
	case BackendFirestore:
		if c.Remote.ProjectID == "" {
			return fmt.Errorf("remote.project_id is required for the firestore backend")
		}
	case BackendSql:
		if c.Remote.Dsn == "" {
			return fmt.Errorf("remote.dsn is required for the sql backend")
		}
	default:
		return fmt.Errorf("remote.backend must be %s or %s, got %q", BackendFirestore, BackendSql, c.Remote.Backend)
	}

	if c.Remote.PollInterval <= 0 {
		return fmt.Errorf("remote.poll_interval must be positive")
	}

	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range")
	}

	if c.Legacy.Enabled && c.Legacy.Endpoint == "" {
		return fmt.Errorf("legacy.endpoint is required when legacy export is enabled")
	}

	switch c.Auth.Mode {
	case AuthLocal:
	case AuthJwt:
		if c.Auth.JwtSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required for jwt auth")
		}
		if c.Remote.Backend != BackendSql {
			return fmt.Errorf("jwt auth needs the sql backend")
		}
	default:
		return fmt.Errorf("auth.mode must be %s or %s, got %q", AuthLocal, AuthJwt, c.Auth.Mode)
	}

	return nil
}

func (c *Config) Location() (*time.Location, error) {
	if c.Collector.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Collector.Timezone)
}

func (c *Config) Listen() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ApplyEnv lets the deployment override the listen address like the other
// services do.
func (c *Config) ApplyEnv() error {
	if host, ok := os.LookupEnv("HOST"); ok {
		c.Server.Host = host
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}

	if email := os.Getenv("COLLECTOR_EMAIL"); email != "" {
		c.Collector.Email = email
	}

	return nil
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads path when given, applies env overrides and validates.
func Load(path string) (*Config, error) {
	var err error
	cfg := DefaultConfig()

	if path != "" {
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	err = cfg.ApplyEnv()
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
