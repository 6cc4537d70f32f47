package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nadhifra/portofolio-api/internal/apperror"
	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/upload"
)

// UploadHandler receives multipart file uploads and hands them to the
// upload store.
//
//	POST /api/upload          → profile picture (JPEG/PNG/WebP, 5 MiB)
//	POST /api/upload/document → supporting document (PDF, 10 MiB)
//
// Uploading and referencing are separate steps: the client uploads
// first, gets back a public URL, then puts that URL in a profile or
// portfolio payload.
type UploadHandler struct {
	store  *upload.Store
	logger *slog.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(store *upload.Store, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{store: store, logger: logger}
}

// HandleImage accepts a profile picture upload.
//
// HTTP: POST /api/upload (multipart, field name "file")
// Auth: required
func (h *UploadHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, upload.KindImage, upload.MaxImageSize)
}

// HandleDocument accepts a supporting document upload.
//
// HTTP: POST /api/upload/document (multipart, field name "file")
// Auth: required
func (h *UploadHandler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, upload.KindDocument, upload.MaxDocumentSize)
}

// handleUpload is the shared multipart plumbing. The store does the
// real validation (content type, extension, size); the handler's only
// size role is MaxBytesReader, which cuts the connection before an
// oversized body is ever buffered.
func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request, kind upload.Kind, maxSize int64) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	// Allow a little headroom over the file cap for the multipart
	// framing and headers.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apperror.ValidationFailed("file", "uploaded file is too large"))
			return
		}
		writeError(w, apperror.ValidationFailed("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	result, err := h.store.Save(
		kind,
		id.Subject,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("file uploaded",
		slog.String("subject", id.Subject),
		slog.String("fileName", result.FileName),
		slog.Int64("size", result.FileSize),
	)

	writeJSON(w, http.StatusOK, result)
}
