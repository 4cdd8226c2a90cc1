package resources

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gurukul-backend/internal/httpx"
	"gurukul-backend/internal/middleware"
	"gurukul-backend/internal/store"
	"gurukul-backend/internal/transport"

	"github.com/go-chi/chi/v5"
)

const (
	multipartMemory = 8 << 20

	// DefaultDownloadTimeout bounds a single download stream.
	DefaultDownloadTimeout = 30 * time.Minute
)

type Handler struct {
	service         *Service
	maxUpload       int64
	downloadTimeout time.Duration
	log             *slog.Logger
}

// NewHandler caps upload bodies at maxUpload bytes and download streams at
// downloadTimeout; a non-positive timeout means DefaultDownloadTimeout.
func NewHandler(service *Service, maxUpload int64, downloadTimeout time.Duration, log *slog.Logger) *Handler {
	if downloadTimeout <= 0 {
		downloadTimeout = DefaultDownloadTimeout
	}
	return &Handler{
		service:         service,
		maxUpload:       maxUpload,
		downloadTimeout: downloadTimeout,
		log:             log,
	}
}

func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/resources", h.List)
	r.Get("/resources/download/{fileId}", h.Download)
	r.Get("/resources/{id}", h.Get)
	r.With(admin).Post("/resources", h.Upload)
	r.With(admin).Delete("/resources/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset := httpx.LimitOffset(r.URL.Query(), store.DefaultLimit, store.MaxLimit)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.service.List(ctx, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		log.Error("resources list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch resources", transport.Details(err))
		return
	}

	log.Info("resources list: ok", slog.Int("count", len(page.Items)))
	transport.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Get(ctx, id)
	if err != nil {
		log.Error("resources get: database error", slog.String("resource_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to fetch resource", transport.Details(err))
		return
	}
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			log.Warn("resources upload: body too large", slog.Int64("limit_bytes", h.maxUpload))
			transport.WriteError(w, http.StatusRequestEntityTooLarge, "File too large",
				transport.Fields{"maxBytes": h.maxUpload})
			return
		}
		log.Warn("resources upload: invalid multipart form", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "File and name are required", transport.Details(err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	name := strings.TrimSpace(r.FormValue("name"))
	file, header, err := r.FormFile("file")
	if err != nil || name == "" {
		log.Warn("resources upload: missing file or name", slog.Bool("has_name", name != ""), slog.Bool("has_file", err == nil))
		transport.WriteError(w, http.StatusBadRequest, "File and name are required", nil)
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	item, err := h.service.Upload(ctx, UploadInput{
		Name:        name,
		Description: r.FormValue("description"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		log.Error("resources upload: storage error", slog.String("name", name), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to upload resource", transport.Details(err))
		return
	}

	log.Info("resources upload: ok",
		slog.String("resource_id", item.ID),
		slog.String("file_id", item.FileID),
		slog.Int64("size", item.Size),
	)
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	fileID := strings.TrimSpace(chi.URLParam(r, "fileId"))

	ctx, cancel := context.WithTimeout(r.Context(), h.downloadTimeout)
	defer cancel()

	item, info, body, err := h.service.Download(ctx, fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("resources download: not found", slog.String("file_id", fileID))
			transport.WriteError(w, http.StatusNotFound, "Resource not found", nil)
			return
		}
		log.Error("resources download: storage error", slog.String("file_id", fileID), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to download resource", transport.Details(err))
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" || contentType == defaultType {
		contentType = item.Type
	}
	if contentType == "" {
		contentType = defaultType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(item.Name))
	if info.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, body)
	if err != nil {
		log.Warn("resources download: stream interrupted", slog.String("file_id", fileID), slog.Int64("bytes", n), slog.String("error", err.Error()))
		return
	}
	log.Info("resources download: ok", slog.String("file_id", fileID), slog.Int64("bytes", n))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		log.Error("resources delete: storage error", slog.String("resource_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Failed to delete resource",
			transport.Details(err).With("resourceId", id))
		return
	}

	log.Info("resources delete: ok", slog.String("resource_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// isTooLarge reports whether err came from the MaxBytesReader. Some multipart
// paths flatten the error to its message.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

// attachment quotes name for Content-Disposition. Control characters never
// reach the header and non-ASCII names use the RFC 2231 form.
func attachment(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" {
		return "attachment"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
