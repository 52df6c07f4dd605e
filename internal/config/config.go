package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// legacyEnv maps config keys to the environment names older deployments
// used in their .env files.
var legacyEnv = map[string]string{
	"zlib.email":      "ZLIBRARY_EMAIL",
	"store.path":      "CSV_FILE_PATH",
	"catalog.output":  "HTML_OUTPUT_PATH",
	"library.dir":     "DOWNLOAD_PATH",
	"cloud.folder_id": "DRIVE_FOLDER_ID",
	"serve.host":      "FLASK_HOST",
	"serve.port":      "FLASK_PORT",
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bookpipe", "config.yml")
}

// Load reads the config from disk and the environment. A .env file in the
// working directory is loaded first; neither it nor the config file needs
// to exist. path overrides BOOKPIPE_CONFIG and DefaultPath.
func Load(path string) (*Config, error) {
	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOOKPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envKey := "BOOKPIPE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	configPath := path
	if configPath == "" {
		configPath = os.Getenv("BOOKPIPE_CONFIG")
	}
	if configPath == "" {
		configPath = DefaultPath()
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults and env cover everything.
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Secrets come from the environment only.
	cfg.Zlib.Password = os.Getenv(cfg.Zlib.PasswordEnv)
	cfg.Cloud.S3.SecretKey = os.Getenv(cfg.Cloud.S3.SecretKeyEnv)
	cfg.Cloud.GitHub.Token = os.Getenv(cfg.Cloud.GitHub.TokenEnv)
	if cfg.Cloud.GitHub.Token == "" {
		cfg.Cloud.GitHub.Token = os.Getenv("BOOKPIPE_GITHUB_TOKEN")
	}

	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns the built-in configuration without reading any file
// or environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	cfg.expandPaths()
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("zlib.base_url", "https://z-library.sk")
	v.SetDefault("zlib.password_env", "ZLIBRARY_PASSWORD")
	v.SetDefault("zlib.timeout", "60s")
	v.SetDefault("store.path", "zlibrary_books.csv")
	v.SetDefault("library.dir", "downloads")
	v.SetDefault("catalog.output", "book_catalog.html")
	v.SetDefault("catalog.stats_output", "book_stats.html")
	v.SetDefault("catalog.title", "My Book Library")
	v.SetDefault("batch.download", 5)
	v.SetDefault("batch.upload", 3)
	v.SetDefault("search.count", 10)
	v.SetDefault("naming.profile", "auto")
	v.SetDefault("cloud.backend", "none")
	v.SetDefault("cloud.s3.secret_key_env", "BOOKPIPE_S3_SECRET_KEY")
	v.SetDefault("cloud.s3.region", "us-east-1")
	v.SetDefault("cloud.s3.use_ssl", true)
	v.SetDefault("cloud.s3.presign_ttl", "168h")
	v.SetDefault("cloud.github.release", "library")
	v.SetDefault("cloud.github.token_env", "GITHUB_TOKEN")
	v.SetDefault("cloud.github.api_base", "https://api.github.com")
	v.SetDefault("serve.host", "127.0.0.1")
	v.SetDefault("serve.port", 5000)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

func (c *Config) expandPaths() {
	c.Store.Path = ExpandHome(c.Store.Path)
	c.Library.Dir = ExpandHome(c.Library.Dir)
	c.Catalog.Output = ExpandHome(c.Catalog.Output)
	c.Catalog.StatsOutput = ExpandHome(c.Catalog.StatsOutput)
	c.Log.File = ExpandHome(c.Log.File)
}

// Save writes the config to path (DefaultPath when empty). Secrets are
// never written.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
