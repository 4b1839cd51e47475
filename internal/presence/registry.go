// Package presence tracks the set of currently connected nicknames and
// enforces nickname uniqueness at join time. Uniqueness applies only to the
// live set; a nickname becomes available again as soon as its holder leaves.
package presence

import (
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// ErrNicknameTaken is returned by Admit when the nickname is already in use.
var ErrNicknameTaken = errors.New("nickname already in use")

// Registry is a mutex-guarded nickname set. Admit is an atomic
// test-and-insert, so two concurrent admits for the same nickname can never
// both succeed.
type Registry struct {
	mu    sync.Mutex
	users map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]struct{})}
}

// Admit adds nickname to the live set, failing with ErrNicknameTaken when it
// is already present. A rejected admit leaves the set unchanged.
func (r *Registry) Admit(nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[nickname]; ok {
		return ErrNicknameTaken
	}
	r.users[nickname] = struct{}{}
	return nil
}

// Remove deletes nickname from the live set and reports whether it had been
// present. Removing an absent nickname is a no-op.
func (r *Registry) Remove(nickname string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[nickname]; !ok {
		return false
	}
	delete(r.users, nickname)
	return true
}

// Snapshot returns the current live set, sorted for stable presence updates.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := lo.Keys(r.users)
	sort.Strings(users)
	return users
}

// Count reports the number of connected participants.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
