package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// RequireZlib checks that book service credentials are present.
func (c *Config) RequireZlib() error {
	var missing []string
	if c.Zlib.Email == "" {
		missing = append(missing, "zlib.email (ZLIBRARY_EMAIL)")
	}
	if c.Zlib.Password == "" {
		missing = append(missing, fmt.Sprintf("password (%s)", c.Zlib.PasswordEnv))
	}
	if c.Zlib.BaseURL == "" {
		missing = append(missing, "zlib.base_url")
	}
	return missingErr(missing)
}

// RequireCloud checks the settings the selected upload backend needs.
func (c *Config) RequireCloud() error {
	var missing []string
	switch c.Cloud.Backend {
	case "s3":
		s := c.Cloud.S3
		if s.Endpoint == "" {
			missing = append(missing, "cloud.s3.endpoint")
		}
		if s.Bucket == "" {
			missing = append(missing, "cloud.s3.bucket")
		}
		if s.AccessKey == "" {
			missing = append(missing, "cloud.s3.access_key")
		}
		if s.SecretKey == "" {
			missing = append(missing, fmt.Sprintf("secret key (%s)", s.SecretKeyEnv))
		}
	case "github":
		g := c.Cloud.GitHub
		if g.Owner == "" {
			missing = append(missing, "cloud.github.owner")
		}
		if g.Repo == "" {
			missing = append(missing, "cloud.github.repo")
		}
		if g.Token == "" {
			missing = append(missing, fmt.Sprintf("token (%s)", g.TokenEnv))
		}
	case "", "none":
		return fmt.Errorf("%w: no cloud backend configured (set cloud.backend to s3 or github)", ErrInvalid)
	default:
		return fmt.Errorf("%w: unknown cloud backend %q", ErrInvalid, c.Cloud.Backend)
	}
	return missingErr(missing)
}

// Validate checks values that are wrong regardless of which step runs.
func (c *Config) Validate() error {
	if c.Batch.Download < 0 || c.Batch.Upload < 0 {
		return fmt.Errorf("%w: batch sizes must not be negative", ErrInvalid)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: serve.port %d out of range", ErrInvalid, c.Serve.Port)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is empty", ErrInvalid)
	}
	if c.Library.Dir == "" {
		return fmt.Errorf("%w: library.dir is empty", ErrInvalid)
	}
	return nil
}

func missingErr(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %v", ErrInvalid, missing)
}
