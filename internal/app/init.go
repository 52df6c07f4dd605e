package app

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/cloud"
	"github.com/blackwell-systems/bookpipe/internal/config"
)

type initOptions struct {
	email      string
	store      string
	libraryDir string
	backend    string
	folderID   string
	s3Endpoint string
	s3Bucket   string
	s3Access   string
	ghOwner    string
	ghRepo     string
	force      bool
	verify     bool
}

func newInitCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a config file with the given settings and defaults for the rest.

Secrets are never written. The Z-Library password is read from
ZLIBRARY_PASSWORD, the S3 secret key from BOOKPIPE_S3_SECRET_KEY and the
GitHub token from GITHUB_TOKEN (each name is configurable).

Quick start:
  1. Run: bookpipe init --email me@example.com
  2. Export ZLIBRARY_PASSWORD
  3. Run: bookpipe run "python programming"`,
		Example: `  # Local only, no uploads
  bookpipe init --email me@example.com

  # Upload to a MinIO bucket
  bookpipe init --email me@example.com --backend s3 \
    --s3-endpoint localhost:9000 --s3-bucket books --s3-access-key minio

  # Upload to GitHub release assets
  bookpipe init --backend github --github-owner me --github-repo library`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !opts.force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			c, err := buildInitConfig(opts)
			if err != nil {
				return err
			}
			if err := config.Save(c, path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok("Wrote %s", path)

			if opts.verify && c.CloudEnabled() {
				verifyCloud(cmd.Context(), path)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  export %s=...\n", c.Zlib.PasswordEnv)
			fmt.Println("  " + color.CyanString("bookpipe search \"python programming\""))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.email, "email", "", "Z-Library account email")
	f.StringVar(&opts.store, "store", "", "Metadata file (.csv or .yml)")
	f.StringVar(&opts.libraryDir, "library-dir", "", "Download directory")
	f.StringVar(&opts.backend, "backend", "none", "Upload backend: none, s3 or github")
	f.StringVar(&opts.folderID, "folder", "", "Cloud folder (key prefix or asset name prefix)")
	f.StringVar(&opts.s3Endpoint, "s3-endpoint", "", "S3 endpoint host[:port]")
	f.StringVar(&opts.s3Bucket, "s3-bucket", "", "S3 bucket")
	f.StringVar(&opts.s3Access, "s3-access-key", "", "S3 access key")
	f.StringVar(&opts.ghOwner, "github-owner", "", "GitHub owner")
	f.StringVar(&opts.ghRepo, "github-repo", "", "GitHub repo")
	f.BoolVar(&opts.force, "force", false, "Overwrite an existing config file")
	f.BoolVar(&opts.verify, "verify", true, "Check the cloud credentials after writing")
	return cmd
}

func buildInitConfig(o initOptions) (*config.Config, error) {
	c := config.Defaults()
	c.Zlib.Email = o.email
	if o.store != "" {
		c.Store.Path = config.ExpandHome(o.store)
	}
	if o.libraryDir != "" {
		c.Library.Dir = config.ExpandHome(o.libraryDir)
	}
	c.Cloud.FolderID = o.folderID

	switch o.backend {
	case "", "none":
		c.Cloud.Backend = "none"
	case "s3":
		c.Cloud.Backend = "s3"
		c.Cloud.S3.Endpoint = o.s3Endpoint
		c.Cloud.S3.Bucket = o.s3Bucket
		c.Cloud.S3.AccessKey = o.s3Access
		if o.s3Endpoint == "" || o.s3Bucket == "" {
			return nil, fmt.Errorf("--s3-endpoint and --s3-bucket are required with --backend s3")
		}
	case "github":
		c.Cloud.Backend = "github"
		c.Cloud.GitHub.Owner = o.ghOwner
		c.Cloud.GitHub.Repo = o.ghRepo
		if o.ghOwner == "" || o.ghRepo == "" {
			return nil, fmt.Errorf("--github-owner and --github-repo are required with --backend github")
		}
	default:
		return nil, fmt.Errorf("unknown backend %q (want none, s3 or github)", o.backend)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// verifyCloud reloads the written config so secrets come from the
// environment, then authenticates against the backend.
func verifyCloud(ctx context.Context, path string) {
	c, err := config.Load(path)
	if err != nil {
		warn("Could not reload config: %v", err)
		return
	}
	if err := c.RequireCloud(); err != nil {
		warn("Cloud not checked: %v", err)
		return
	}
	st, err := cloud.New(c, logger.Named("cloud"))
	if err != nil {
		warn("Cloud setup failed: %v", err)
		return
	}
	if err := st.Authenticate(ctx); err != nil {
		warn("Cloud login failed: %v", err)
		return
	}
	ok("Cloud credentials work (%s)", c.Cloud.Backend)
}
