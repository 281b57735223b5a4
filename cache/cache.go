// Package cache implements the content-addressed result cache: an in-memory
// fingerprint-to-result map with per-entry expiry and a write-through
// persisted snapshot that survives process restart.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

var logger = util.InitLogger() // setup the logger

// MaxSnapshotAge is the cutoff past which a persisted snapshot is discarded
// in full on load.
const MaxSnapshotAge = 24 * time.Hour

// Entry is one cached result. A TTL of zero means the entry never expires.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	WrittenAt int64           `json:"written_at"` // unix millis
	TTL       int64           `json:"ttl"`        // millis, 0 = unbounded
}

func (e Entry) expiredAt(now time.Time) bool {
	if e.TTL == 0 {
		return false
	}
	return now.UnixMilli()-e.WrittenAt >= e.TTL
}

// pair serializes as the two-element [key, entry] array of the snapshot
// wire format.
type pair struct {
	Key   string
	Entry Entry
}

// MarshalJSON implements json.Marshaler.
func (p pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Entry})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *pair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Entry)
}

// snapshot is the persisted whole-cache form.
type snapshot struct {
	Cache            []pair `json:"cache"`
	Timestamp        int64  `json:"timestamp"`        // unix millis of last mutation
	SessionStartTime int64  `json:"sessionStartTime"` // unix millis
}

// Stats summarizes the cache state.
type Stats struct {
	EntryCount            int      `json:"entry_count"`
	SessionDurationMillis int64    `json:"session_duration_millis"`
	Keys                  []string `json:"keys"`
}

// ResultCache is the process-wide mapping from fingerprint to previously
// computed enrichment result. It is constructed once, injected everywhere,
// and safe for concurrent use.
type ResultCache struct {
	mu           sync.Mutex
	entries      map[string]Entry
	sessionStart time.Time
	store        SnapshotStore
}

// New builds a ResultCache backed by the given store, loading any persisted
// snapshot. A snapshot older than MaxSnapshotAge is discarded in full; a
// corrupt snapshot is wiped rather than left behind. Persistence errors are
// non-fatal: the in-memory cache stays authoritative for the session.
func New(store SnapshotStore) *ResultCache {
	c := &ResultCache{
		entries:      make(map[string]Entry),
		sessionStart: time.Now(),
		store:        store,
	}
	c.load()
	return c
}

func (c *ResultCache) load() {
	data, err := c.store.Load()
	if err != nil {
		logger.Sugar().Warnf("Cache snapshot unreadable, starting empty: %v", err)
		c.wipeStore()
		return
	}
	if len(data) == 0 {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Sugar().Warnf("Cache snapshot corrupt, wiping: %v", err)
		c.wipeStore()
		return
	}

	age := time.Since(time.UnixMilli(snap.Timestamp))
	if age >= MaxSnapshotAge {
		logger.Sugar().Infof("Cache snapshot is %s old, discarding", age.Round(time.Second))
		c.wipeStore()
		return
	}

	for _, p := range snap.Cache {
		c.entries[p.Key] = p.Entry
	}
	if snap.SessionStartTime > 0 {
		c.sessionStart = time.UnixMilli(snap.SessionStartTime)
	}
	logger.Sugar().Infof("Loaded cache snapshot with %d entries", len(c.entries))
}

func (c *ResultCache) wipeStore() {
	if err := c.store.Wipe(); err != nil {
		logger.Sugar().Warnf("Failed to wipe cache snapshot: %v", err)
	}
}

// persist writes the full snapshot through to the store. Callers hold c.mu.
func (c *ResultCache) persist() {
	snap := snapshot{
		Cache:            make([]pair, 0, len(c.entries)),
		Timestamp:        time.Now().UnixMilli(),
		SessionStartTime: c.sessionStart.UnixMilli(),
	}
	for key, entry := range c.entries {
		snap.Cache = append(snap.Cache, pair{Key: key, Entry: entry})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		logger.Sugar().Warnf("Failed to marshal cache snapshot: %v", err)
		return
	}
	if err := c.store.Save(data); err != nil {
		logger.Sugar().Warnf("Failed to persist cache snapshot: %v", err)
	}
}

// Set stores value under key, replacing any previous entry wholesale.
func (c *ResultCache) Set(key string, value any) error {
	return c.SetWithExpiry(key, value, 0)
}

// SetWithExpiry stores value under key with a time-to-live. A zero ttl means
// the entry never expires.
func (c *ResultCache) SetWithExpiry(key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache value for %q not serializable: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{
		Value:     raw,
		WrittenAt: time.Now().UnixMilli(),
		TTL:       ttl.Milliseconds(),
	}
	c.persist()
	return nil
}

// Get decodes the live entry for key into out, reporting whether one existed.
// An entry past its TTL is lazily evicted and treated as absent.
func (c *ResultCache) Get(key string, out any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	if entry.expiredAt(time.Now()) {
		delete(c.entries, key)
		c.persist()
		return false
	}
	if out == nil {
		return true
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		logger.Sugar().Warnf("Cache entry %q does not decode into caller type: %v", key, err)
		return false
	}
	return true
}

// Has reports whether a live entry exists for key.
func (c *ResultCache) Has(key string) bool {
	return c.Get(key, nil)
}

// Clear empties the in-memory state and discards the persisted snapshot.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	c.sessionStart = time.Now()
	c.wipeStore()
}

// Stats reports the entry count, session duration, and resident keys.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return Stats{
		EntryCount:            len(c.entries),
		SessionDurationMillis: time.Since(c.sessionStart).Milliseconds(),
		Keys:                  keys,
	}
}
