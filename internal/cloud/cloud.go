// Package cloud uploads books to shareable remote storage.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/config"
)

var (
	// ErrAuthentication wraps credential failures from any backend.
	ErrAuthentication = errors.New("cloud authentication failed")
	// ErrNotPublic is returned by MakePublic when the backend can only
	// produce access-controlled links.
	ErrNotPublic = errors.New("backend cannot grant public access")
	// ErrDisabled is returned by New when no backend is configured.
	ErrDisabled = errors.New("cloud storage is not configured")
)

// Storage is a remote file store that can hand out shareable links.
type Storage interface {
	Authenticate(ctx context.Context) error
	// UploadFile stores the local file at path under name inside folderID
	// and returns the backend's identifier for it.
	UploadFile(ctx context.Context, path, name, folderID string) (string, error)
	MakePublic(ctx context.Context, fileID string) error
	ShareableLink(ctx context.Context, fileID string) (string, error)
}

// Publisher is implemented by backends that can host a generated page.
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte) (string, error)
}

// New builds the backend selected by cfg.Cloud.Backend.
func New(cfg *config.Config, logger *zap.Logger) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.CloudEnabled() {
		return nil, ErrDisabled
	}
	if err := cfg.RequireCloud(); err != nil {
		return nil, err
	}
	switch cfg.Cloud.Backend {
	case "s3":
		return NewS3(cfg.Cloud.S3, logger.Named("s3"))
	case "github":
		return NewGitHub(cfg.Cloud.GitHub, logger.Named("github")), nil
	default:
		return nil, fmt.Errorf("unknown cloud backend %q", cfg.Cloud.Backend)
	}
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
