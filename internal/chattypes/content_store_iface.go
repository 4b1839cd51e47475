package chattypes

import (
	"context"
	"io"
	"time"
)

// ContentStore is the binary upload collaborator. The relay core never
// inspects file bytes, only the returned reference. The interface lives here
// to break the cycle between storage and handlers.
type ContentStore interface {
	// UploadFile writes the reader's content to the store and returns its
	// access URL together with the original file name.
	UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*FileInfo, error)

	// PurgeOlderThan removes stored objects whose age exceeds maxAge,
	// regardless of whether any record still references them. Returns the
	// number of objects removed.
	PurgeOlderThan(maxAge time.Duration) (int, error)
}
