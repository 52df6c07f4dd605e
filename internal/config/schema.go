package config

import (
	"fmt"
	"time"
)

// Config is the top-level bookpipe configuration.
type Config struct {
	Zlib    ZlibConfig    `mapstructure:"zlib" yaml:"zlib"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Library LibraryConfig `mapstructure:"library" yaml:"library"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Batch   BatchConfig   `mapstructure:"batch" yaml:"batch"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Naming  NamingConfig  `mapstructure:"naming" yaml:"naming"`
	Cloud   CloudConfig   `mapstructure:"cloud" yaml:"cloud"`
	Serve   ServeConfig   `mapstructure:"serve" yaml:"serve"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ZlibConfig holds the book service account.
type ZlibConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Email       string        `mapstructure:"email" yaml:"email"`
	PasswordEnv string        `mapstructure:"password_env" yaml:"password_env"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Password    string        `mapstructure:"-" yaml:"-"` // resolved at runtime, never written
}

// StoreConfig locates the metadata file. A .yml/.yaml path selects YAML,
// anything else CSV.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LibraryConfig is where downloaded books and covers are written.
type LibraryConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// CatalogConfig controls the generated HTML pages.
type CatalogConfig struct {
	Output      string `mapstructure:"output" yaml:"output"`
	StatsOutput string `mapstructure:"stats_output" yaml:"stats_output"`
	Title       string `mapstructure:"title" yaml:"title"`
}

// BatchConfig bounds how many records one download or upload run handles.
type BatchConfig struct {
	Download int `mapstructure:"download" yaml:"download"`
	Upload   int `mapstructure:"upload" yaml:"upload"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Count int `mapstructure:"count" yaml:"count"`
}

// NamingConfig selects the filename validation profile: auto, windows or posix.
type NamingConfig struct {
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// CloudConfig selects and configures the upload backend.
type CloudConfig struct {
	Backend  string       `mapstructure:"backend" yaml:"backend"` // "s3", "github" or "none"
	FolderID string       `mapstructure:"folder_id" yaml:"folder_id"`
	S3       S3Config     `mapstructure:"s3" yaml:"s3"`
	GitHub   GitHubConfig `mapstructure:"github" yaml:"github"`
}

// S3Config holds S3/MinIO connection settings.
type S3Config struct {
	Endpoint     string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey    string        `mapstructure:"access_key" yaml:"access_key"`
	SecretKeyEnv string        `mapstructure:"secret_key_env" yaml:"secret_key_env"`
	Bucket       string        `mapstructure:"bucket" yaml:"bucket"`
	Region       string        `mapstructure:"region" yaml:"region"`
	UseSSL       bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	Presign      bool          `mapstructure:"presign" yaml:"presign"`
	PresignTTL   time.Duration `mapstructure:"presign_ttl" yaml:"presign_ttl"`
	SecretKey    string        `mapstructure:"-" yaml:"-"`
}

// GitHubConfig holds GitHub release-asset storage settings.
type GitHubConfig struct {
	Owner    string `mapstructure:"owner" yaml:"owner"`
	Repo     string `mapstructure:"repo" yaml:"repo"`
	Release  string `mapstructure:"release" yaml:"release"`
	TokenEnv string `mapstructure:"token_env" yaml:"token_env"`
	APIBase  string `mapstructure:"api_base" yaml:"api_base"`
	Token    string `mapstructure:"-" yaml:"-"`
}

// ServeConfig holds the dashboard listen address.
type ServeConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// LogConfig mirrors logctx.Config.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// Addr returns host:port for the dashboard.
func (s ServeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EffectiveDownloadBatch returns limit when positive, else the configured
// batch size, else 5.
func (b BatchConfig) EffectiveDownloadBatch(limit int) int {
	return firstPositive(limit, b.Download, 5)
}

// EffectiveUploadBatch returns limit when positive, else the configured
// batch size, else 3.
func (b BatchConfig) EffectiveUploadBatch(limit int) int {
	return firstPositive(limit, b.Upload, 3)
}

// EffectiveCount returns n when positive, else the configured count, else 10.
func (s SearchConfig) EffectiveCount(n int) int {
	return firstPositive(n, s.Count, 10)
}

// EffectiveRelease returns the configured release tag or "library".
func (g GitHubConfig) EffectiveRelease() string {
	if g.Release != "" {
		return g.Release
	}
	return "library"
}

// CloudEnabled reports whether an upload backend is configured.
func (c *Config) CloudEnabled() bool {
	return c.Cloud.Backend != "" && c.Cloud.Backend != "none"
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
