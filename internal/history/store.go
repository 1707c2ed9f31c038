package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/parse"
)

// DefaultLimit is the number of most recent records kept on disk.
const DefaultLimit = 500

// Store is a JSON-file backed, date-keyed signal history. One Store owns one file;
// its mutex serializes load and save for that file.
type Store struct {
	mu    sync.Mutex
	path  string
	limit int
}

// NewStore creates a store for filePath. A non-positive limit uses DefaultLimit.
func NewStore(filePath string, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{path: filePath, limit: limit}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Limit returns the record cap.
func (s *Store) Limit() int { return s.limit }

// Load reads the history file. A missing, unreadable or malformed file yields an
// empty history; individual malformed entries are dropped.
func (s *Store) Load() []model.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] read history %s: %v", s.path, err)
		}
		return []model.HistoryRecord{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("[WARN] decode history %s: %v", s.path, err)
		return []model.HistoryRecord{}
	}

	items := make([]model.HistoryRecord, 0, len(raw))
	for _, msg := range raw {
		rec, ok := decodeRecord(msg)
		if !ok {
			continue
		}
		items = append(items, rec)
	}
	return s.trim(items)
}

// Save normalizes, sorts and truncates history, then replaces the file atomically
// through a temporary file in the same directory.
func (s *Store) Save(history []model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := make([]model.HistoryRecord, 0, len(history))
	for _, rec := range history {
		if n, ok := Normalize(rec); ok {
			normalized = append(normalized, n)
		}
	}
	normalized = s.trim(normalized)

	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod history: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// trim folds items in order through Upsert, so the result is date-sorted with one
// record per date, then keeps the newest s.limit records.
func (s *Store) trim(items []model.HistoryRecord) []model.HistoryRecord {
	out := make([]model.HistoryRecord, 0, len(items))
	for _, rec := range items {
		out = Upsert(out, rec)
	}
	items = out
	if s.limit > 0 && len(items) > s.limit {
		items = items[len(items)-s.limit:]
	}
	return items
}

// decodeRecord parses one loosely typed JSON object. Only a valid date is required.
func decodeRecord(msg json.RawMessage) (model.HistoryRecord, bool) {
	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return model.HistoryRecord{}, false
	}

	date, _ := obj["date"].(string)
	rec := model.HistoryRecord{
		Date:         date,
		Advances:     parse.IntPtr(obj["advances"]),
		Declines:     parse.IntPtr(obj["declines"]),
		NetAdvances:  parse.IntPtr(obj["net_advances"]),
		NewHighs:     parse.IntPtr(obj["new_highs"]),
		NewLows:      parse.IntPtr(obj["new_lows"]),
		IssuesTraded: parse.IntPtr(obj["issues_traded"]),
		Trin:         parse.NumberPtr(obj["trin"]),
		BaseSignal:   parse.BoolPtr(obj["base_signal"]),
		State:        parse.StringPtr(obj["state"]),
		Mode:         parse.StringPtr(obj["mode"]),
		Risk:         parse.StringPtr(obj["risk"]),
		Triggered:    parse.BoolPtr(obj["triggered"]),
		LampOn:       parse.BoolPtr(obj["lamp_on"]),
		Derived:      truthy(obj["derived"]),
	}
	return Normalize(rec)
}

// truthy reads the derived flag. Anything that is not recognisably true counts
// as authoritative.
func truthy(v any) bool {
	b, ok := parse.ParseBool(v)
	return ok && b
}
