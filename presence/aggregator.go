// Package presence tracks who is currently composing in a room.
// State is ephemeral and owned by a single room view; nothing is persisted
// and nothing survives a reconnect.
package presence

import (
	"sort"
	"sync"
	"time"

	"chat-sync/domain"
)

// DefaultTTL is how long a typing entry stays visible without a refresh.
const DefaultTTL = 1000 * time.Millisecond

// TypingEntry records the last moment a user was seen composing.
type TypingEntry struct {
	User       domain.User
	LastSeenAt time.Time
}

// Aggregator holds typing entries for one open room view.
// Expiry is evaluated lazily at read time: stale entries linger in the map
// until overwritten, cleared, or skipped by Snapshot.
type Aggregator struct {
	mu      sync.RWMutex
	entries map[string]TypingEntry
}

func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]TypingEntry)}
}

// Record inserts or refreshes the entry for user. Later events overwrite,
// never append: at most one entry per user at any time.
func (a *Aggregator) Record(user domain.User, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[user.ID] = TypingEntry{User: user, LastSeenAt: now}
}

// Snapshot returns the unexpired entries ordered by LastSeenAt ascending,
// ties broken by user ID. It never mutates state, so calling it twice with
// the same now yields identical results.
func (a *Aggregator) Snapshot(now time.Time, ttl time.Duration) []TypingEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var alive []TypingEntry
	for _, entry := range a.entries {
		if now.Sub(entry.LastSeenAt) < ttl {
			alive = append(alive, entry)
		}
	}
	sort.Slice(alive, func(i, j int) bool {
		if !alive[i].LastSeenAt.Equal(alive[j].LastSeenAt) {
			return alive[i].LastSeenAt.Before(alive[j].LastSeenAt)
		}
		return alive[i].User.ID < alive[j].User.ID
	})
	return alive
}

// ClearAll drops every entry. A RoomChanged means a message landed, which
// ends the current exchange of typing for everyone in the room.
func (a *Aggregator) ClearAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[string]TypingEntry)
}
