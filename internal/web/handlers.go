package web

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
	"github.com/blackwell-systems/bookpipe/internal/render"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.Status().ZlibAuthenticated {
		writeError(w, http.StatusBadRequest, "Z-Library not authenticated")
		return
	}
	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	count, ok := intParam(w, r, "count")
	if !ok {
		return
	}
	if count <= 0 {
		count = s.deps.SearchCount
	}

	s.opMu.Lock()
	found, added, err := pipeline.Ingest(r.Context(), s.deps.Searcher, s.deps.Store, query, count)
	s.opMu.Unlock()
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.touch(fmt.Sprintf("Search %q: %d found, %d new", query, found, added))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !s.Status().ZlibAuthenticated {
		writeError(w, http.StatusBadRequest, "Z-Library not authenticated")
		return
	}
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}

	s.opMu.Lock()
	results, err := s.deps.Downloader.Run(r.Context(), limit)
	s.opMu.Unlock()
	if err != nil {
		s.logger.Error("download aborted", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	done, failed := pipeline.Counts(results)
	s.touch(fmt.Sprintf("Downloaded %d, failed %d", done, failed))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Uploader == nil {
		writeError(w, http.StatusBadRequest, "Cloud storage not configured")
		return
	}
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}

	s.opMu.Lock()
	results, err := s.deps.Uploader.Run(r.Context(), limit)
	s.opMu.Unlock()
	if err != nil {
		s.logger.Error("upload aborted", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	done, failed := pipeline.Counts(results)
	s.touch(fmt.Sprintf("Uploaded %d, failed %d", done, failed))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.opMu.Lock()
	path, err := s.deps.Pages.Generate()
	s.opMu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.touch("Catalog written to " + path)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleViewCatalog serves the generated catalog, generating it first when
// it does not exist yet.
func (s *Server) handleViewCatalog(w http.ResponseWriter, r *http.Request) {
	path := s.deps.Pages.Output
	if _, err := os.Stat(path); err != nil {
		s.opMu.Lock()
		_, err = s.deps.Pages.Generate()
		s.opMu.Unlock()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	f := catalog.Filter{
		Status:   catalog.Status(r.URL.Query().Get("status")),
		Language: r.URL.Query().Get("language"),
		Format:   r.URL.Query().Get("format"),
		Search:   r.URL.Query().Get("q"),
	}
	books := f.Apply(s.deps.Store.GetAll())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(layout("All Books", booksTable(books))))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	opts := render.Options{Title: s.deps.Pages.Title}
	if s.deps.Pages.Library != nil {
		opts.LibraryFiles, opts.LibraryBytes, _ = s.deps.Pages.Library.Usage()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.StatsPage(w, s.deps.Store.ComputeStatistics(), opts); err != nil {
		s.logger.Error("rendering stats", zap.Error(err))
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	body := dashboard(s.Status(), s.deps.Store.ComputeStatistics(), s.deps.SearchCount)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(layout("Dashboard", body)))
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Store.ComputeStatistics())
}

func (s *Server) handleAPIBooks(w http.ResponseWriter, r *http.Request) {
	st := r.URL.Query().Get("status")
	var books []catalog.BookRecord
	if st == "" {
		books = s.deps.Store.GetAll()
	} else {
		status, err := catalog.ParseStatus(st)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		books = s.deps.Store.GetByStatus(status)
	}
	if books == nil {
		books = []catalog.BookRecord{}
	}
	writeJSON(w, http.StatusOK, books)
}

// intParam reads a non-negative integer form value. Missing means 0.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return n, true
}
