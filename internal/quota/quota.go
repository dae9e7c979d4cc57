// Package quota enforces a per-identity daily scrape allowance backed
// by a JSON ledger on disk.
package quota

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultDailyLimit is the scrapes allowed per identity per day
	DefaultDailyLimit = 5
	// retentionDays is how long spent days stay in the ledger
	retentionDays = 30
	// dayFormat keys the ledger by calendar day
	dayFormat = "2006-01-02"
)

// ledger maps identity -> day -> count
type ledger map[string]map[string]int

// Tracker persists usage counts and answers whether an identity may
// scrape today. Safe for concurrent use within one process; the file
// is rewritten atomically on every spend.
type Tracker struct {
	path  string
	limit int

	mu sync.Mutex
}

// NewTracker creates a Tracker storing its ledger at path. limit <= 0
// selects the default daily limit.
func NewTracker(path string, limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Tracker{path: path, limit: limit}
}

// Remaining reports how many scrapes the identity has left today
func (t *Tracker) Remaining(identity string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, err := t.load()
	if err != nil {
		return 0, err
	}

	used := l[identity][time.Now().Format(dayFormat)]
	remaining := t.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Spend consumes one scrape for the identity. Admin identities bypass
// the limit but are still recorded. Returns false when the allowance
// is exhausted.
func (t *Tracker) Spend(identity string, admin bool) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, err := t.load()
	if err != nil {
		return false, err
	}

	today := time.Now().Format(dayFormat)
	if l[identity] == nil {
		l[identity] = make(map[string]int)
	}

	if !admin && l[identity][today] >= t.limit {
		log.Info().
			Str("identity", identity).
			Int("limit", t.limit).
			Msg("Daily quota exhausted")
		return false, nil
	}

	l[identity][today]++
	prune(l)

	if err := t.save(l); err != nil {
		return false, err
	}
	return true, nil
}

// load reads the ledger, treating a missing file as empty
func (t *Tracker) load() (ledger, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(ledger), nil
		}
		return nil, fmt.Errorf("read quota ledger: %w", err)
	}

	var l ledger
	if err := json.Unmarshal(data, &l); err != nil {
		// A corrupt ledger should not brick scraping; start fresh
		log.Warn().Err(err).Str("path", t.path).Msg("Quota ledger corrupt, resetting")
		return make(ledger), nil
	}
	if l == nil {
		l = make(ledger)
	}
	return l, nil
}

// save writes the ledger via a temp file rename
func (t *Tracker) save(l ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quota ledger: %w", err)
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create quota dir: %w", err)
		}
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write quota ledger: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replace quota ledger: %w", err)
	}
	return nil
}

// prune drops days older than the retention window and identities left
// with no days
func prune(l ledger) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format(dayFormat)
	for identity, days := range l {
		for day := range days {
			if day < cutoff {
				delete(days, day)
			}
		}
		if len(days) == 0 {
			delete(l, identity)
		}
	}
}
