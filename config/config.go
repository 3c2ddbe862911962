package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Smoke     SmokeConfig     `yaml:"smoke"`
	Users     []User          `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// EnrichConfig configures the company enrichment vendor API.
type EnrichConfig struct {
	APIURL         string `yaml:"api_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WorkspaceConfig configures the workspace/database vendor API.
type WorkspaceConfig struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	APIVersion     string `yaml:"api_version"`
	DatabaseID     string `yaml:"database_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ArchiveConfig configures the optional MinIO report archive.
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	MaxReports int `yaml:"max_reports"`
}

// SpotCheck is one enrichment test case run by the smoke suite.
type SpotCheck struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
	// ExpectResolved means the check fails unless the vendor returns a real
	// match with a positive employee count and a non-empty industry.
	ExpectResolved bool `yaml:"expect_resolved"`
}

type SmokeConfig struct {
	SpotChecks []SpotCheck `yaml:"spot_checks"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Team     string `yaml:"team"`
}

// Environment variables that override file-based secrets. Secrets belong in
// the environment in deployed setups; the yaml fields exist for local dev.
const (
	EnvEnrichAPIKey        = "COMPANYLENS_ENRICH_API_KEY"
	EnvWorkspaceToken      = "COMPANYLENS_WORKSPACE_TOKEN"
	EnvWorkspaceDatabaseID = "COMPANYLENS_WORKSPACE_DATABASE_ID"
	EnvJWTSecret           = "COMPANYLENS_JWT_SECRET"
)

// MissingFieldError reports required configuration that was absent from both
// the config file and the environment. It is returned at load time, before
// any network call is attempted.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Fields, ", "))
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overrides secrets from the process environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEnrichAPIKey); v != "" {
		c.Enrich.APIKey = v
	}
	if v := os.Getenv(EnvWorkspaceToken); v != "" {
		c.Workspace.APIToken = v
	}
	if v := os.Getenv(EnvWorkspaceDatabaseID); v != "" {
		c.Workspace.DatabaseID = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Enrich.TimeoutSeconds == 0 {
		c.Enrich.TimeoutSeconds = 30
	}
	if c.Workspace.TimeoutSeconds == 0 {
		c.Workspace.TimeoutSeconds = 30
	}
	if c.Workspace.APIVersion == "" {
		c.Workspace.APIVersion = "2024-06-01"
	}
	if c.Archive.ExpireDays == 0 {
		c.Archive.ExpireDays = 7
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.Store.MaxReports == 0 {
		c.Store.MaxReports = 100
	}
}

// Validate checks every required credential and identifier up front so a
// misconfigured process fails at startup, not on its first vendor call.
func (c *Config) Validate() error {
	var missing []string

	if c.Enrich.APIURL == "" {
		missing = append(missing, "enrich.api_url")
	}
	if c.Enrich.APIKey == "" {
		missing = append(missing, "enrich.api_key ("+EnvEnrichAPIKey+")")
	}
	if c.Workspace.APIURL == "" {
		missing = append(missing, "workspace.api_url")
	}
	if c.Workspace.APIToken == "" {
		missing = append(missing, "workspace.api_token ("+EnvWorkspaceToken+")")
	}
	if c.Workspace.DatabaseID == "" {
		missing = append(missing, "workspace.database_id ("+EnvWorkspaceDatabaseID+")")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "auth.jwt_secret ("+EnvJWTSecret+")")
	}
	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" {
			missing = append(missing, "archive.endpoint")
		}
		if c.Archive.AccessKey == "" {
			missing = append(missing, "archive.access_key")
		}
		if c.Archive.SecretKey == "" {
			missing = append(missing, "archive.secret_key")
		}
		if c.Archive.Bucket == "" {
			missing = append(missing, "archive.bucket")
		}
	}

	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}

// Timeout returns the enrichment request timeout.
func (c *EnrichConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the workspace request timeout.
func (c *WorkspaceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
