// ABOUTME: Liftlog configuration management with backend selection.
// ABOUTME: Loads settings, applies env overrides, and builds stores, catalog and backup sinks.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/liftlog/internal/catalog"
	"github.com/harperreed/liftlog/internal/charm"
	"github.com/harperreed/liftlog/internal/export"
	"github.com/harperreed/liftlog/internal/storage"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendCharm    = "charm"
)

// Config stores liftlog configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "postgres" or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local data. SQLite puts liftlog.db
	// here and file backups go under backups/. Supports ~ expansion.
	// Defaults to ~/.local/share/liftlog.
	DataDir string `json:"data_dir,omitempty"`

	// PostgresDSN is the connection string used by the postgres backend.
	PostgresDSN string `json:"postgres_dsn,omitempty"`

	Charm   *CharmConfig   `json:"charm,omitempty"`
	Catalog *CatalogConfig `json:"catalog,omitempty"`
	Backup  *BackupConfig  `json:"backup,omitempty"`
}

// CharmConfig configures the Charm KV backend.
type CharmConfig struct {
	Host     string `json:"host,omitempty"`
	DBName   string `json:"db_name,omitempty"`
	AutoSync *bool  `json:"auto_sync,omitempty"`
}

// CatalogConfig configures the ExerciseDB client.
type CatalogConfig struct {
	BaseURL        string `json:"base_url,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	APIHost        string `json:"api_host,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// BackupConfig configures where snapshots are uploaded.
type BackupConfig struct {
	S3Bucket   string `json:"s3_bucket,omitempty"`
	S3Prefix   string `json:"s3_prefix,omitempty"`
	S3Region   string `json:"s3_region,omitempty"`
	S3Endpoint string `json:"s3_endpoint,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("LIFTLOG_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := getenv("LIFTLOG_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("LIFTLOG_POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := getenv("EXERCISEDB_API_KEY"); v != "" {
		c.catalog().APIKey = v
	}
	if v := getenv("EXERCISEDB_API_HOST"); v != "" {
		c.catalog().APIHost = v
	}
	if v := getenv("LIFTLOG_BACKUP_S3_BUCKET"); v != "" {
		c.backup().S3Bucket = v
	}
}

func (c *Config) catalog() *CatalogConfig {
	if c.Catalog == nil {
		c.Catalog = &CatalogConfig{}
	}
	return c.Catalog
}

func (c *Config) backup() *BackupConfig {
	if c.Backup == nil {
		c.Backup = &BackupConfig{}
	}
	return c.Backup
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	switch backend := c.GetBackend(); backend {
	case BackendSQLite:
		return storage.Open(filepath.Join(c.GetDataDir(), "liftlog.db"))
	case BackendPostgres:
		return storage.OpenPostgres(c.PostgresDSN)
	case BackendCharm:
		return charm.Open(c.CharmOptions())
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// CharmOptions returns the Charm KV settings with defaults filled in.
// Auto-sync is on unless explicitly disabled.
func (c *Config) CharmOptions() charm.Options {
	opts := charm.Options{
		Host:     charm.DefaultHost,
		DBName:   charm.DefaultDBName,
		AutoSync: true,
	}
	if c.Charm == nil {
		return opts
	}
	if c.Charm.Host != "" {
		opts.Host = c.Charm.Host
	}
	if c.Charm.DBName != "" {
		opts.DBName = c.Charm.DBName
	}
	if c.Charm.AutoSync != nil {
		opts.AutoSync = *c.Charm.AutoSync
	}
	return opts
}

// CatalogClient builds the ExerciseDB client from the catalog settings.
func (c *Config) CatalogClient() *catalog.Client {
	opts := catalog.Options{}
	if c.Catalog != nil {
		opts.BaseURL = c.Catalog.BaseURL
		opts.APIKey = c.Catalog.APIKey
		opts.APIHost = c.Catalog.APIHost
		opts.Timeout = time.Duration(c.Catalog.TimeoutSeconds) * time.Second
	}
	return catalog.NewClient(opts)
}

// HasCatalogKey reports whether catalog requests will be authenticated.
func (c *Config) HasCatalogKey() bool {
	return c.Catalog != nil && c.Catalog.APIKey != ""
}

// BackupSink returns an S3 sink when a bucket is configured, otherwise a
// file sink under the data directory.
func (c *Config) BackupSink(ctx context.Context) (export.Sink, error) {
	if c.Backup == nil || c.Backup.S3Bucket == "" {
		return export.FileSink{Dir: filepath.Join(c.GetDataDir(), "backups")}, nil
	}
	return export.NewS3Sink(ctx, export.S3Config{
		Bucket:    c.Backup.S3Bucket,
		Prefix:    c.Backup.S3Prefix,
		Region:    c.Backup.S3Region,
		Endpoint:  c.Backup.S3Endpoint,
		PathStyle: c.Backup.S3Endpoint != "",
	})
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "liftlog", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
