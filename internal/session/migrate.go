package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"switchboard/internal/logging"
)

const legacyFilePrefix = "state_"

// legacyState is the v1 on-disk schema: a flat record without schema
// version, creation time, or event IDs.
type legacyState struct {
	Domain     string        `json:"domain"`
	Confidence float64       `json:"confidence"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Chain      []legacyEvent `json:"chain,omitempty"`
}

type legacyEvent struct {
	From string    `json:"from,omitempty"`
	To   string    `json:"to"`
	Why  string    `json:"why"`
	At   time.Time `json:"at"`
}

// MigrationResult reports what a legacy-state migration did.
type MigrationResult struct {
	Scanned  int      // legacy files found
	Migrated int      // upgraded to the current schema
	Skipped  []string // legacy files left alone (unparseable or shadowed)
}

// MigrateLegacyStates upgrades v1 state files (state_<key>.json) found in
// dir to the current schema and removes the originals. Unparseable legacy
// files and keys that already have a current-schema file are skipped with a
// warning; one bad file never aborts the rest.
func MigrateLegacyStates(dir string, store *FileStore) (*MigrationResult, error) {
	result := &MigrationResult{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("scan for legacy state: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, legacyFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		result.Scanned++

		key := strings.TrimSuffix(strings.TrimPrefix(name, legacyFilePrefix), ".json")
		legacyPath := filepath.Join(dir, name)

		if key == "" {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		// A current-schema file for the same key wins; the legacy record
		// is stale by definition.
		if _, err := store.Load(key); err == nil {
			logging.Store("legacy state %s shadowed by current state, removing", name)
			_ = os.Remove(legacyPath)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		data, err := os.ReadFile(legacyPath)
		if err != nil {
			logging.StoreWarn("cannot read legacy state %s: %v", name, err)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		var old legacyState
		if err := json.Unmarshal(data, &old); err != nil {
			logging.StoreWarn("unparseable legacy state %s, leaving in place: %v", name, err)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		st := upgradeLegacy(key, &old)
		if err := store.Save(st); err != nil {
			logging.StoreWarn("cannot save migrated state for %s: %v", key, err)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		_ = os.Remove(legacyPath)
		result.Migrated++
		logging.Store("migrated legacy state for %s (domain=%q, %d handoffs)",
			key, old.Domain, len(old.Chain))
	}

	return result, nil
}

// upgradeLegacy maps a v1 record onto the current schema. Chain events get
// fresh IDs because v1 never assigned any; timestamps and ordering are
// preserved as written.
func upgradeLegacy(key string, old *legacyState) *State {
	st := NewState(key)
	st.ActiveDomain = old.Domain
	st.Confidence = old.Confidence

	if !old.UpdatedAt.IsZero() {
		st.CreatedAt = old.UpdatedAt
		st.UpdatedAt = old.UpdatedAt
	}

	for _, ev := range old.Chain {
		st.Handoffs = append(st.Handoffs, HandoffEvent{
			ID:     uuid.NewString(),
			From:   ev.From,
			To:     ev.To,
			Reason: ev.Why,
			At:     ev.At,
		})
	}
	return st
}
