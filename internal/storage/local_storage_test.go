package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relay-go/internal/config"
)

func TestUploadRoundTrip(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	cs, err := NewLocalContentStore(config.StorageConfig{
		UploadPath:    dir,
		UploadBaseURL: "/static/uploads",
		MaxFileSizeMB: 1,
	})
	req.NoError(err)

	content := "voice note bytes"
	info, err := cs.UploadFile(context.Background(), strings.NewReader(content), int64(len(content)), "note.webm", "audio/webm")
	req.NoError(err)

	req.Equal("note.webm", info.FileName)
	req.True(strings.HasPrefix(info.URL, "/static/uploads/"))
	req.True(strings.HasSuffix(info.URL, ".webm"), "stored name keeps the original extension")
	req.NotContains(info.URL, "note", "stored name must not be the original name")

	data, err := os.ReadFile(info.Path)
	req.NoError(err)
	req.Equal(content, string(data))
}

func TestUploadRejectsOversize(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	cs, err := NewLocalContentStore(config.StorageConfig{
		UploadPath:    dir,
		UploadBaseURL: "/static/uploads",
		MaxFileSizeMB: 1,
	})
	req.NoError(err)

	_, err = cs.UploadFile(context.Background(), strings.NewReader("x"), 2<<20, "big.bin", "application/octet-stream")
	req.ErrorIs(err, ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	req.NoError(err)
	req.Empty(entries, "a rejected upload must leave no file behind")
}

func TestUploadSizeMismatchLeavesNoFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	cs, err := NewLocalContentStore(config.StorageConfig{
		UploadPath:    dir,
		UploadBaseURL: "/static/uploads",
		MaxFileSizeMB: 1,
	})
	req.NoError(err)

	_, err = cs.UploadFile(context.Background(), strings.NewReader("short"), 1000, "truncated.txt", "text/plain")
	req.Error(err)

	entries, err := os.ReadDir(dir)
	req.NoError(err)
	req.Empty(entries)
}

func TestPurgeOlderThanRemovesOnlyExpired(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	cs, err := NewLocalContentStore(config.StorageConfig{
		UploadPath:    dir,
		UploadBaseURL: "/static/uploads",
		MaxFileSizeMB: 1,
	})
	req.NoError(err)

	oldPath := filepath.Join(dir, "old.png")
	freshPath := filepath.Join(dir, "fresh.png")
	req.NoError(os.WriteFile(oldPath, []byte("old"), 0o644))
	req.NoError(os.WriteFile(freshPath, []byte("fresh"), 0o644))

	// Age the first file past the retention window. Its referencing record
	// may be long evicted; the purge runs on the file's own age clock.
	stale := time.Now().Add(-8 * 24 * time.Hour)
	req.NoError(os.Chtimes(oldPath, stale, stale))

	removed, err := cs.PurgeOlderThan(7 * 24 * time.Hour)
	req.NoError(err)
	req.Equal(1, removed)

	_, err = os.Stat(oldPath)
	req.True(os.IsNotExist(err))
	_, err = os.Stat(freshPath)
	req.NoError(err)
}

func TestPurgeEmptyDirectory(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	cs, err := NewLocalContentStore(config.StorageConfig{
		UploadPath:    dir,
		UploadBaseURL: "/static/uploads",
		MaxFileSizeMB: 1,
	})
	req.NoError(err)

	removed, err := cs.PurgeOlderThan(time.Hour)
	req.NoError(err)
	req.Zero(removed)
}
