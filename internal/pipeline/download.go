package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/ingest"
	"github.com/blackwell-systems/bookpipe/internal/library"
	"github.com/blackwell-systems/bookpipe/internal/naming"
	"github.com/blackwell-systems/bookpipe/internal/zlib"
)

// DefaultDownloadBatch is used when neither the caller nor the config sets
// a download batch size.
const DefaultDownloadBatch = 5

const progressInterval = 256 * 1024

// Downloader fetches pending records into the library directory.
type Downloader struct {
	store    Store
	resolver Resolver
	fetcher  Fetcher
	lib      *library.Manager
	logger   *zap.Logger
	batch    int

	// OnStart is called before each record is processed.
	OnStart func(index, total int, rec catalog.BookRecord)
	// OnProgress reports bytes streamed for the current book.
	OnProgress func(id string, read, total int64)
	// OnResult is called after each record is processed.
	OnResult func(Result)
}

// NewDownloader wires a Downloader. batch <= 0 selects DefaultDownloadBatch.
func NewDownloader(store Store, resolver Resolver, fetcher Fetcher, lib *library.Manager, logger *zap.Logger, batch int) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		store:    store,
		resolver: resolver,
		fetcher:  fetcher,
		lib:      lib,
		logger:   logger,
		batch:    batch,
	}
}

// Run downloads up to limit pending records (the configured batch when
// limit <= 0) in store order. A failing record is marked error and the
// batch continues. The returned error is non-nil only when the run was
// aborted: an authentication failure or a cancelled context.
func (d *Downloader) Run(ctx context.Context, limit int) ([]Result, error) {
	n := batchSize(limit, d.batch, DefaultDownloadBatch)
	pending := head(d.store.GetByStatus(catalog.StatusPending), n)
	if len(pending) == 0 {
		d.logger.Info("no pending records")
		return nil, nil
	}
	return d.process(ctx, pending)
}

// RunIDs downloads the given records regardless of batch size. Unknown ids
// and records that are not pending produce failed results without
// touching the store.
func (d *Downloader) RunIDs(ctx context.Context, ids []string) ([]Result, error) {
	var (
		todo    []catalog.BookRecord
		skipped []Result
	)
	for _, id := range ids {
		rec, ok := d.store.GetByID(id)
		switch {
		case !ok:
			skipped = append(skipped, Result{ID: id, Reason: catalog.ErrNotFound.Error()})
		case rec.Status != catalog.StatusPending:
			skipped = append(skipped, Result{ID: id, Title: rec.Title,
				Reason: fmt.Sprintf("status is %s, not pending", rec.Status)})
		default:
			todo = append(todo, rec)
		}
	}
	for _, r := range skipped {
		d.emit(r)
	}
	results, err := d.process(ctx, todo)
	return append(skipped, results...), err
}

func (d *Downloader) process(ctx context.Context, records []catalog.BookRecord) ([]Result, error) {
	results := make([]Result, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if d.OnStart != nil {
			d.OnStart(i, len(records), rec)
		}
		res, err := d.downloadOne(ctx, rec)
		results = append(results, res)
		d.emit(res)
		if err != nil {
			return results, err
		}
	}
	ok, failed := Counts(results)
	d.logger.Info("download batch finished", zap.Int("ok", ok), zap.Int("failed", failed))
	return results, nil
}

func (d *Downloader) emit(r Result) {
	if d.OnResult != nil {
		d.OnResult(r)
	}
}

func (d *Downloader) downloadOne(ctx context.Context, rec catalog.BookRecord) (Result, error) {
	res := Result{ID: rec.ID, Title: rec.Title}
	log := d.logger.With(zap.String("id", rec.ID), zap.String("title", rec.Title))

	if _, err := d.store.UpdateStatus(rec.ID, catalog.StatusDownloading, catalog.Update{}); err != nil {
		res.Reason = err.Error()
		log.Warn("cannot start download", zap.Error(err))
		return res, nil
	}

	url, err := d.resolver.ResolveDownload(ctx, rec)
	if err != nil && zlib.IsAuth(err) {
		// Not the record's fault: put it back so the next run retries it.
		if _, serr := d.store.UpdateStatus(rec.ID, catalog.StatusPending, catalog.Update{}); serr != nil {
			log.Warn("reverting record failed", zap.Error(serr))
		}
		res.Reason = err.Error()
		return res, fmt.Errorf("resolving download for %s: %w", rec.ID, err)
	}
	if err != nil {
		return d.fail(log, res, "resolve download", err), nil
	}

	bookName, coverName := d.fileNames(rec)
	path, reader, err := d.fetchBook(ctx, rec, url, &bookName, &coverName)
	if err != nil {
		return d.fail(log, res, "download", err), nil
	}

	if _, err := d.store.UpdateStatus(rec.ID, catalog.StatusCompleted, catalog.Update{
		DownloadURL: catalog.Str(url),
		LocalPath:   catalog.Str(path),
	}); err != nil {
		log.Error("recording download failed", zap.Error(err))
		res.Reason = err.Error()
		return res, nil
	}
	res.OK = true
	res.Path = path
	res.Bytes = reader.Size()
	res.SHA256 = reader.SHA256()

	if cover := d.fetchCover(ctx, rec, path, coverName); cover != "" {
		if _, err := d.store.UpdateStatus(rec.ID, catalog.StatusCompleted, catalog.Update{
			CoverLocalPath: catalog.Str(cover),
		}); err != nil {
			log.Warn("recording cover failed", zap.Error(err))
		} else {
			res.CoverPath = cover
		}
	}

	log.Info("downloaded",
		zap.String("path", path),
		zap.String("size", humanize.Bytes(uint64(res.Bytes))),
		zap.Bool("cover", res.CoverPath != ""),
	)
	return res, nil
}

func (d *Downloader) fail(log *zap.Logger, res Result, step string, err error) Result {
	res.Reason = fmt.Sprintf("%s: %v", step, err)
	if _, serr := d.store.UpdateStatus(res.ID, catalog.StatusError, catalog.Update{}); serr != nil {
		log.Error("recording failure failed", zap.Error(serr))
	}
	log.Warn("download failed", zap.String("step", step), zap.Error(err))
	return res
}

// errNotABook is returned when the service answers with a web page, which
// it does once the daily download quota is used up.
var errNotABook = errors.New("received an HTML page instead of a book")

func (d *Downloader) fetchBook(ctx context.Context, rec catalog.BookRecord, url string, bookName, coverName *string) (string, *ingest.Reader, error) {
	src, err := d.fetcher.Open(ctx, url)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = src.Body.Close() }()

	if strings.HasPrefix(src.ContentType, "text/html") {
		return "", nil, errNotABook
	}
	if rec.Extension == "" && src.Extension() != "" {
		rec.Extension = src.Extension()
		*bookName, *coverName = d.fileNames(rec)
	}

	reader := ingest.NewReader(src.Body)
	if d.OnProgress != nil {
		reader = reader.WithProgress(src.Size, progressInterval, func(read, total int64) {
			d.OnProgress(rec.ID, read, total)
		})
	}
	path, err := d.lib.Store(*bookName, reader)
	if err != nil {
		return "", nil, err
	}
	if reader.Size() == 0 {
		_ = d.lib.Remove(*bookName)
		return "", nil, errors.New("empty download")
	}
	return path, reader, nil
}

// fetchCover stores the record's cover image next to the book. PDFs
// without a downloadable cover get their first page rendered instead.
// Cover problems never fail the book.
func (d *Downloader) fetchCover(ctx context.Context, rec catalog.BookRecord, bookPath, coverName string) string {
	if rec.CoverURL != "" {
		src, err := d.fetcher.Open(ctx, rec.CoverURL)
		if err == nil {
			defer func() { _ = src.Body.Close() }()
			if path := d.lib.StoreCover(coverName, src.Body); path != "" {
				return path
			}
		}
		d.logger.Debug("cover download failed", zap.String("id", rec.ID), zap.Error(err))
	}
	return d.lib.ExtractCover(bookPath, coverName)
}

// fileNames returns the book and cover names for rec. When another record
// already owns either plain name, both are disambiguated with the record id
// so they keep a shared stem.
func (d *Downloader) fileNames(rec catalog.BookRecord) (book, cover string) {
	book, cover = naming.BookFilename(rec), naming.CoverFilename(rec)
	bookPath, coverPath := d.lib.Path(book), d.lib.Path(cover)
	for _, other := range d.store.GetAll() {
		if other.ID == rec.ID {
			continue
		}
		if other.LocalPath == bookPath || other.CoverLocalPath == coverPath {
			return naming.Disambiguate(book, rec.ID), naming.Disambiguate(cover, rec.ID)
		}
	}
	return book, cover
}
