package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/cloud"
	"github.com/blackwell-systems/bookpipe/internal/ingest"
	"github.com/blackwell-systems/bookpipe/internal/logctx"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
	"github.com/blackwell-systems/bookpipe/internal/zlib"
)

// commandContext returns a context cancelled on SIGINT/SIGTERM and
// carrying the logger.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return logctx.WithLogger(ctx, logger), cancel
}

// zlibClient logs in with the configured account.
func zlibClient(ctx context.Context) (*zlib.Client, error) {
	if err := cfg.RequireZlib(); err != nil {
		return nil, err
	}
	c := zlib.New(cfg.Zlib.BaseURL, cfg.Zlib.Timeout)
	if err := c.Login(ctx, cfg.Zlib.Email, cfg.Zlib.Password); err != nil {
		return nil, fmt.Errorf("z-library login: %w", err)
	}
	logger.Debug("logged in to z-library")
	return c, nil
}

// cloudStorage builds the configured upload backend. It returns nil and no
// error when uploads are disabled.
func cloudStorage() (cloud.Storage, error) {
	st, err := cloud.New(cfg, logger.Named("cloud"))
	if errors.Is(err, cloud.ErrDisabled) {
		return nil, nil
	}
	return st, err
}

func newDownloader(resolver pipeline.Resolver) *pipeline.Downloader {
	return pipeline.NewDownloader(store, resolver, ingest.NewFetcher(0), lib,
		logger.Named("download"), cfg.Batch.Download)
}

func newUploader(st cloud.Storage) *pipeline.Uploader {
	return pipeline.NewUploader(store, st, cfg.Cloud.FolderID, logger.Named("upload"), cfg.Batch.Upload)
}

func newPages(withStats bool) pipeline.Pages {
	p := pipeline.Pages{
		Store:   store,
		Library: lib,
		Output:  cfg.Catalog.Output,
		Title:   cfg.Catalog.Title,
	}
	if withStats {
		p.StatsOutput = cfg.Catalog.StatsOutput
	}
	return p
}
