package cloud

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/config"
	"github.com/blackwell-systems/bookpipe/internal/github"
)

// GitHub stores books as release assets. The folder ID names the release
// tag; an empty folder ID uses the configured default release.
type GitHub struct {
	client     *github.Client
	owner      string
	repo       string
	defaultTag string
	logger     *zap.Logger

	mu       sync.Mutex
	private  bool
	branch   string
	releases map[string]*github.Release
	assets   map[string]github.Asset
}

// NewGitHub creates a GitHub release backend.
func NewGitHub(cfg config.GitHubConfig, logger *zap.Logger) *GitHub {
	return &GitHub{
		client:     github.New(cfg.Token, cfg.APIBase),
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		defaultTag: cfg.EffectiveRelease(),
		logger:     logger,
		releases:   map[string]*github.Release{},
		assets:     map[string]github.Asset{},
	}
}

// Authenticate looks up the repository and makes sure the default release
// exists.
func (g *GitHub) Authenticate(ctx context.Context) error {
	repo, err := g.client.GetRepo(ctx, g.owner, g.repo)
	if errors.Is(err, github.ErrNotFound) {
		// GitHub answers 404 for private repositories the token cannot see.
		return fmt.Errorf("repository %s/%s not found: %w", g.owner, g.repo, ErrAuthentication)
	}
	if err != nil {
		return g.wrap("looking up repository", err)
	}
	g.mu.Lock()
	g.private = repo.Private
	g.branch = repo.DefaultBranch
	g.mu.Unlock()

	if _, err := g.release(ctx, g.defaultTag); err != nil {
		return err
	}
	g.logger.Debug("authenticated",
		zap.String("repo", repo.FullName),
		zap.Bool("private", repo.Private),
	)
	return nil
}

// UploadFile uploads path as a release asset named name. An existing asset
// with the same name and size is reused; a stale one is replaced.
func (g *GitHub) UploadFile(ctx context.Context, path, name, folderID string) (string, error) {
	tag := folderID
	if tag == "" {
		tag = g.defaultTag
	}
	rel, err := g.release(ctx, tag)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	existing, err := g.client.FindAsset(ctx, g.owner, g.repo, rel.ID, name)
	if err != nil {
		return "", g.wrap("listing assets", err)
	}
	if existing != nil {
		if existing.Size == info.Size() {
			g.remember(*existing)
			return strconv.FormatInt(existing.ID, 10), nil
		}
		if err := g.client.DeleteAsset(ctx, g.owner, g.repo, existing.ID); err != nil {
			return "", g.wrap("replacing asset "+name, err)
		}
	}

	asset, err := g.client.UploadAsset(ctx, g.owner, g.repo, rel.ID, name, f, info.Size(), contentType(name))
	if err != nil {
		return "", g.wrap("uploading "+name, err)
	}
	g.remember(*asset)
	return strconv.FormatInt(asset.ID, 10), nil
}

// MakePublic succeeds for public repositories. Assets of a private
// repository are only reachable with a token.
func (g *GitHub) MakePublic(_ context.Context, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.private {
		return fmt.Errorf("%s/%s is private: %w", g.owner, g.repo, ErrNotPublic)
	}
	return nil
}

// ShareableLink returns the asset's browser download URL.
func (g *GitHub) ShareableLink(ctx context.Context, fileID string) (string, error) {
	g.mu.Lock()
	a, ok := g.assets[fileID]
	g.mu.Unlock()
	if ok && a.BrowserDownloadURL != "" {
		return a.BrowserDownloadURL, nil
	}

	id, err := strconv.ParseInt(fileID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid asset id %q", fileID)
	}
	asset, err := g.client.GetAsset(ctx, g.owner, g.repo, id)
	if err != nil {
		return "", g.wrap("looking up asset", err)
	}
	g.remember(*asset)
	return asset.BrowserDownloadURL, nil
}

// Publish commits a generated page to the repository's default branch.
func (g *GitHub) Publish(ctx context.Context, name string, data []byte) (string, error) {
	g.mu.Lock()
	branch := g.branch
	g.mu.Unlock()

	fc, err := g.client.PutFile(ctx, g.owner, g.repo, name, branch, data, "Update "+name)
	if err != nil {
		return "", g.wrap("publishing "+name, err)
	}
	return fc.HTMLURL, nil
}

func (g *GitHub) release(ctx context.Context, tag string) (*github.Release, error) {
	g.mu.Lock()
	rel, ok := g.releases[tag]
	g.mu.Unlock()
	if ok {
		return rel, nil
	}

	rel, err := g.client.EnsureRelease(ctx, g.owner, g.repo, tag)
	if err != nil {
		return nil, g.wrap("preparing release "+tag, err)
	}
	g.mu.Lock()
	g.releases[tag] = rel
	g.mu.Unlock()
	return rel, nil
}

func (g *GitHub) remember(a github.Asset) {
	g.mu.Lock()
	g.assets[strconv.FormatInt(a.ID, 10)] = a
	g.mu.Unlock()
}

func (g *GitHub) wrap(op string, err error) error {
	if github.IsAuth(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrAuthentication, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ interface {
	Storage
	Publisher
} = (*GitHub)(nil)
