package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relay-go/internal/chattypes"
	"relay-go/internal/config"
	"relay-go/internal/history"
	"relay-go/internal/storage"
)

func TestRunCleanupTrimsRecordsAndPurgesAttachments(t *testing.T) {
	req := require.New(t)

	msgDir := t.TempDir()
	uploadDir := t.TempDir()

	seed, err := history.NewStore(msgDir, 100)
	req.NoError(err)
	for i := 0; i < 8; i++ {
		_, err := seed.Append(fmt.Sprintf("user-%d", i), chattypes.TextMessageType, "old chatter", "", "")
		req.NoError(err)
	}

	// Reopen with a tighter bound so the pass has records to trim.
	store, err := history.NewStore(msgDir, 5)
	req.NoError(err)

	contentStore, err := storage.NewLocalContentStore(config.StorageConfig{
		UploadPath:    uploadDir,
		UploadBaseURL: "/static/uploads",
		MaxFileSizeMB: 20,
	})
	req.NoError(err)

	expired := filepath.Join(uploadDir, "expired.png")
	fresh := filepath.Join(uploadDir, "fresh.png")
	req.NoError(os.WriteFile(expired, []byte("x"), 0o644))
	req.NoError(os.WriteFile(fresh, []byte("y"), 0o644))
	stale := time.Now().Add(-8 * 24 * time.Hour)
	req.NoError(os.Chtimes(expired, stale, stale))

	s := NewScheduler(store, contentStore, 7*24*time.Hour, "@hourly")
	s.RunCleanup()

	count, err := store.Count()
	req.NoError(err)
	req.Equal(5, count)

	_, err = os.Stat(expired)
	req.True(os.IsNotExist(err))
	_, err = os.Stat(fresh)
	req.NoError(err)
}

func TestRunCleanupNoWork(t *testing.T) {
	req := require.New(t)

	store, err := history.NewStore(t.TempDir(), 100)
	req.NoError(err)
	contentStore, err := storage.NewLocalContentStore(config.StorageConfig{
		UploadPath:    t.TempDir(),
		UploadBaseURL: "/static/uploads",
		MaxFileSizeMB: 20,
	})
	req.NoError(err)

	s := NewScheduler(store, contentStore, 7*24*time.Hour, "@hourly")
	s.RunCleanup()
	s.RunCleanup()

	count, err := store.Count()
	req.NoError(err)
	req.Zero(count)
}
