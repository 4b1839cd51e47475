package chatserver

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"relay-go/internal/chattypes"
	"relay-go/internal/config"
	"relay-go/internal/storage"
)

const (
	defaultMaxMemory = 32 << 20 // 32 MB max memory for multipart forms
)

// uploadResponse is what the chat client expects back from POST /upload.
type uploadResponse struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
}

// UploadHandler wraps the binary upload endpoint.
type UploadHandler struct {
	contentStore chattypes.ContentStore
	cfg          config.StorageConfig
}

// NewUploadHandler creates a new UploadHandler instance.
func NewUploadHandler(contentStore chattypes.ContentStore, cfg config.StorageConfig) *UploadHandler {
	return &UploadHandler{
		contentStore: contentStore,
		cfg:          cfg,
	}
}

// UploadFileHandler handles POST /upload. An oversize or failed upload is
// reported to the uploader only; no file and no record are left behind.
func (h *UploadHandler) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	maxUploadSize := h.cfg.MaxFileSizeMB << 20
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxMemory
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSONError(w, fmt.Sprintf("File too large, limit is %d MB", maxUploadSize>>20), http.StatusRequestEntityTooLarge)
		} else {
			writeJSONError(w, fmt.Sprintf("Failed to parse form: %v", err), http.StatusBadRequest)
		}
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeJSONError(w, "Missing 'file' field", http.StatusBadRequest)
		} else {
			writeJSONError(w, fmt.Sprintf("Failed to read file: %v", err), http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	mimeType := handler.Header.Get("Content-Type")
	zap.S().Infow("upload received", "name", handler.Filename, "size", handler.Size, "mimeType", mimeType)

	fileInfo, err := h.contentStore.UploadFile(r.Context(), file, handler.Size, handler.Filename, mimeType)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			writeJSONError(w, fmt.Sprintf("File too large, limit is %d MB", maxUploadSize>>20), http.StatusRequestEntityTooLarge)
			return
		}
		zap.S().Errorw("failed to store upload", "name", handler.Filename, "error", err)
		writeJSONError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, uploadResponse{
		URL:          fileInfo.URL,
		OriginalName: fileInfo.FileName,
	})
}
