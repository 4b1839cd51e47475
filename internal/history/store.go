package history

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"relay-go/internal/chattypes"
)

// ErrNotFound is returned by Read when a record does not exist, typically
// because it was evicted between enumeration and read. Callers skip it.
var ErrNotFound = errors.New("record not found")

const recordExt = ".msg"

// Store is a durable, bounded, append-only set of message records. Each
// record is one JSON file under dir, named by its id, so that an ascending
// sort of file names is creation order. Writes go through a single mutex:
// the count check, the eviction of the oldest record and the new write form
// one critical section, which keeps the store at maxRecords after every
// completed append even under concurrent writers.
type Store struct {
	dir        string
	maxRecords int

	mu  sync.Mutex
	seq atomic.Uint64
}

// NewStore creates the message directory if needed and returns a Store.
func NewStore(dir string, maxRecords int) (*Store, error) {
	if maxRecords <= 0 {
		return nil, fmt.Errorf("max records must be positive, got %d", maxRecords)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create message directory '%s': %w", dir, err)
	}
	return &Store{dir: dir, maxRecords: maxRecords}, nil
}

// newID builds a record id from the creation timestamp, a process-wide
// monotonic sequence and a sender-identity hash. The zero-padded layout makes
// lexicographic order equal creation order, and the sequence keeps two
// records from the same sender in the same millisecond from colliding.
func (s *Store) newID(sender string, ts int64) string {
	h := sha1.Sum([]byte(sender))
	tag := hex.EncodeToString(h[:])[:8]
	return fmt.Sprintf("%013d_%06d_%s", ts, s.seq.Add(1)%1_000_000, tag)
}

// Append persists a new record and returns it. When the store already holds
// maxRecords or more, the oldest records are evicted first so the store holds
// exactly maxRecords after the write. A failed durable write leaves the store
// unchanged and must abort any broadcast of the message.
func (s *Store) Append(sender string, mtype chattypes.MessageType, body, attachmentName, attachmentRef string) (*chattypes.MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.listLocked()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate records before append: %w", err)
	}
	for len(ids) >= s.maxRecords {
		if err := os.Remove(s.recordPath(ids[0])); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to evict oldest record '%s': %w", ids[0], err)
		}
		ids = ids[1:]
	}

	rec := &chattypes.MessageRecord{
		Sender:         sender,
		Type:           mtype,
		Body:           body,
		AttachmentName: attachmentName,
		AttachmentRef:  attachmentRef,
		CreatedAt:      time.Now().UnixMilli(),
	}
	rec.ID = s.newID(sender, rec.CreatedAt)

	if err := s.writeRecord(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// writeRecord serializes the record to a temp file and renames it into
// place, so concurrent readers never observe a partially written record.
func (s *Store) writeRecord(rec *chattypes.MessageRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize record '%s': %w", rec.ID, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, rec.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp record file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write record '%s': %w", rec.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close record '%s': %w", rec.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.recordPath(rec.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish record '%s': %w", rec.ID, err)
	}
	return nil
}

// ListIdentifiers returns all stored record ids in ascending creation order.
// An empty store yields an empty slice.
func (s *Store) ListIdentifiers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Store) listLocked() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read message directory '%s': %w", s.dir, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Read retrieves a single record by id. ErrNotFound is an expected outcome
// when the record was evicted after enumeration.
func (s *Store) Read(id string) (*chattypes.MessageRecord, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read record '%s': %w", id, err)
	}
	var rec chattypes.MessageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record '%s': %w", id, err)
	}
	rec.ID = id
	return &rec, nil
}

// EvictExcess removes the oldest records one at a time until the store holds
// at most maxRecords. It is idempotent and shares the write mutex with
// Append, so the inline and periodic eviction paths cannot race each other
// above the bound. Returns the number of records removed.
func (s *Store) EvictExcess() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	removed := 0
	for len(ids) > s.maxRecords {
		if err := os.Remove(s.recordPath(ids[0])); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to evict record '%s': %w", ids[0], err)
		}
		ids = ids[1:]
		removed++
	}
	return removed, nil
}

// Count reports the number of stored records.
func (s *Store) Count() (int, error) {
	ids, err := s.ListIdentifiers()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}

// validID rejects ids that could escape the message directory. Record ids
// arrive from clients on history requests and are used as file names.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\") && id != "." && id != ".."
}
