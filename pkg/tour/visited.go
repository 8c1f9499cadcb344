package tour

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/skytonelabs/skytone/pkg/kv"
)

// visitedKey is the durable-store key for the "tour previously shown"
// record.
const visitedKey = "tour:visited"

// Record is what gets persisted when a tour finishes. Only its
// existence gates auto-start; the fields are for debugging.
type Record struct {
	CompletedAt time.Time `msgpack:"completed_at"`
	Waypoints   int       `msgpack:"waypoints"`
	Skipped     bool      `msgpack:"skipped"`
}

// VisitedStore persists the one-bit "has the user seen the tour" flag
// in a durable key-value store. It is injected rather than ambient so
// tests can use an in-memory store.
type VisitedStore struct {
	store kv.Store
}

// NewVisitedStore wraps a kv store.
func NewVisitedStore(store kv.Store) *VisitedStore {
	return &VisitedStore{store: store}
}

// Seen reports whether a completed tour has been recorded. Store errors
// degrade to false, which at worst replays the tour.
func (v *VisitedStore) Seen() bool {
	data, err := v.store.Get(visitedKey)
	if errors.Is(err, kv.ErrNotFound) {
		return false
	}
	if err != nil {
		slog.Warn("tour: reading visited flag", "err", err)
		return false
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		slog.Warn("tour: corrupt visited record", "err", err)
		return false
	}
	return true
}

// Record returns the persisted record, if any.
func (v *VisitedStore) Record() (Record, bool) {
	data, err := v.store.Get(visitedKey)
	if err != nil {
		return Record{}, false
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, false
	}
	return rec, true
}

// Mark persists the record. Failures are logged, not returned: losing
// the flag only means the tour may play again.
func (v *VisitedStore) Mark(rec Record) {
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		slog.Warn("tour: encoding visited record", "err", err)
		return
	}
	if err := v.store.Set(visitedKey, data); err != nil {
		slog.Warn("tour: writing visited flag", "err", err)
	}
}

// Clear removes the flag, re-arming the auto-start. Exposed for the
// debug reset action.
func (v *VisitedStore) Clear() error {
	return v.store.Delete(visitedKey)
}
