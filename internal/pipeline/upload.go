package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/cloud"
	"github.com/blackwell-systems/bookpipe/internal/library"
)

// DefaultUploadBatch is used when neither the caller nor the config sets
// an upload batch size.
const DefaultUploadBatch = 3

// Uploader pushes downloaded books to cloud storage and records their
// shareable links.
type Uploader struct {
	store    Store
	storage  cloud.Storage
	folderID string
	logger   *zap.Logger
	batch    int

	// OnStart is called before each record is processed.
	OnStart func(index, total int, rec catalog.BookRecord)
	// OnResult is called after each record is processed.
	OnResult func(Result)
}

// NewUploader wires an Uploader. batch <= 0 selects DefaultUploadBatch.
func NewUploader(store Store, storage cloud.Storage, folderID string, logger *zap.Logger, batch int) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		store:    store,
		storage:  storage,
		folderID: folderID,
		logger:   logger,
		batch:    batch,
	}
}

// UploadCandidates returns the completed records whose book file exists and
// that have no cloud link yet.
func UploadCandidates(records []catalog.BookRecord) []catalog.BookRecord {
	var out []catalog.BookRecord
	for _, r := range records {
		if r.Status == catalog.StatusCompleted && r.DriveLink == "" && library.FileExists(r.LocalPath) {
			out = append(out, r)
		}
	}
	return out
}

// Run authenticates and uploads up to limit candidates (the configured
// batch when limit <= 0). Failed records keep an empty drive_link and are
// picked up again next run. An authentication failure aborts the run.
func (u *Uploader) Run(ctx context.Context, limit int) ([]Result, error) {
	if err := u.storage.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("cloud authentication: %w", err)
	}

	n := batchSize(limit, u.batch, DefaultUploadBatch)
	todo := head(UploadCandidates(u.store.GetAll()), n)
	if len(todo) == 0 {
		u.logger.Info("nothing to upload")
		return nil, nil
	}

	results := make([]Result, 0, len(todo))
	for i, rec := range todo {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if u.OnStart != nil {
			u.OnStart(i, len(todo), rec)
		}
		res, err := u.uploadOne(ctx, rec)
		results = append(results, res)
		if u.OnResult != nil {
			u.OnResult(res)
		}
		if err != nil {
			return results, err
		}
	}
	ok, failed := Counts(results)
	u.logger.Info("upload batch finished", zap.Int("ok", ok), zap.Int("failed", failed))
	return results, nil
}

func (u *Uploader) uploadOne(ctx context.Context, rec catalog.BookRecord) (Result, error) {
	res := Result{ID: rec.ID, Title: rec.Title}
	log := u.logger.With(zap.String("id", rec.ID), zap.String("title", rec.Title))

	link, err := u.share(ctx, rec.LocalPath)
	if err != nil {
		res.Reason = err.Error()
		log.Warn("upload failed", zap.Error(err))
		if cloud.IsAuth(err) {
			return res, err
		}
		return res, nil
	}

	upd := catalog.Update{DriveLink: catalog.Str(link)}
	if library.FileExists(rec.CoverLocalPath) {
		coverLink, err := u.share(ctx, rec.CoverLocalPath)
		if err != nil {
			log.Warn("cover upload failed", zap.Error(err))
		} else {
			upd.CoverDriveLink = catalog.Str(coverLink)
			res.CoverPath = coverLink
		}
	}

	if _, err := u.store.UpdateStatus(rec.ID, catalog.StatusCompleted, upd); err != nil {
		res.Reason = err.Error()
		log.Error("recording upload failed", zap.Error(err))
		return res, nil
	}
	res.OK = true
	res.Path = link
	log.Info("uploaded", zap.String("link", link))
	return res, nil
}

// share uploads one file and returns its shareable link. Backends that can
// only produce access-controlled links still yield a usable link.
func (u *Uploader) share(ctx context.Context, path string) (string, error) {
	fileID, err := u.storage.UploadFile(ctx, path, filepath.Base(path), u.folderID)
	if err != nil {
		return "", err
	}
	if err := u.storage.MakePublic(ctx, fileID); err != nil {
		if !errors.Is(err, cloud.ErrNotPublic) {
			return "", fmt.Errorf("making %s public: %w", filepath.Base(path), err)
		}
		u.logger.Debug("link is access-controlled", zap.String("file", fileID), zap.Error(err))
	}
	return u.storage.ShareableLink(ctx, fileID)
}
