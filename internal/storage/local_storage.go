package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay-go/internal/chattypes"
	"relay-go/internal/config"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// LocalContentStore implements chattypes.ContentStore on the local
// filesystem. Stored names are uuid-derived, so an upload never clobbers
// another; the original file name travels back in the FileInfo only.
type LocalContentStore struct {
	basePath string // root directory for stored uploads, e.g. "./static/uploads"
	baseURL  string // URL prefix for serving them, e.g. "/static/uploads"
	maxBytes int64
}

// NewLocalContentStore creates the upload directory if needed and returns a
// LocalContentStore as a chattypes.ContentStore.
func NewLocalContentStore(cfg config.StorageConfig) (chattypes.ContentStore, error) {
	if err := os.MkdirAll(cfg.UploadPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory '%s': %w", cfg.UploadPath, err)
	}
	return &LocalContentStore{
		basePath: cfg.UploadPath,
		baseURL:  cfg.UploadBaseURL,
		maxBytes: cfg.MaxFileSizeMB << 20,
	}, nil
}

// UploadFile saves the reader's content under a fresh unique name and
// returns its access URL. A short or failed write leaves no file behind.
func (s *LocalContentStore) UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*chattypes.FileInfo, error) {
	if s.maxBytes > 0 && fileSize > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, fileSize, s.maxBytes)
	}

	ext := filepath.Ext(fileName)
	if ext == "" {
		// No extension on the original name, try to infer one from the MIME type.
		extensions, _ := mime.ExtensionsByType(mimeType)
		if len(extensions) > 0 {
			ext = extensions[0]
		}
	}
	storedName := uuid.New().String() + ext
	dstPath := filepath.Join(s.basePath, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file '%s': %w", dstPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if written != fileSize {
		os.Remove(dstPath)
		return nil, fmt.Errorf("upload size mismatch: expected %d, wrote %d", fileSize, written)
	}

	fileURL := strings.TrimSuffix(s.baseURL, "/") + "/" + url.PathEscape(storedName)
	return &chattypes.FileInfo{
		URL:      fileURL,
		Path:     dstPath,
		Size:     fileSize,
		MimeType: mimeType,
		FileName: fileName,
	}, nil
}

// PurgeOlderThan removes stored uploads whose modification time is older
// than maxAge. The listing is snapshotted first, then acted on, so the scan
// never holds up concurrent uploads; a file deleted underneath us is not an
// error. An upload outliving its referencing record is still removed on its
// own age clock.
func (s *LocalContentStore) PurgeOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload directory '%s': %w", s.basePath, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			zap.S().Warnw("failed to stat upload during purge", "file", e.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			zap.S().Warnw("failed to remove expired upload", "file", e.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
