package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"switchboard/internal/logging"
)

// SweepResult summarizes one pass over the sessions directory.
type SweepResult struct {
	Examined int
	Expired  int
	Corrupt  int
	Errors   []string
}

// Sweep walks every state file and removes the ones that are expired or
// corrupt. Files are checked in parallel; individual failures are collected
// rather than aborting the pass. Load already deletes expired files as a
// side effect, so the sweep only has to observe the outcome.
func Sweep(ctx context.Context, store *FileStore) (*SweepResult, error) {
	keys, err := store.List()
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Examined: len(keys)}
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	for _, key := range keys {
		key := key
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}

			_, err := store.Load(key)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil || errors.Is(err, ErrNotFound):
				// Healthy, or raced with another process removing it.
			case errors.Is(err, ErrExpired):
				result.Expired++
			case errors.Is(err, ErrCorruptState):
				if delErr := store.Delete(key); delErr != nil {
					result.Errors = append(result.Errors, delErr.Error())
				} else {
					result.Corrupt++
				}
			default:
				result.Errors = append(result.Errors, err.Error())
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return result, err
	}

	if result.Expired > 0 || result.Corrupt > 0 {
		logging.Session("sweep removed %d expired and %d corrupt of %d session files",
			result.Expired, result.Corrupt, result.Examined)
	}
	return result, nil
}

// SweepInterval is how often a long-running process should re-sweep.
// One-shot CLI invocations sweep at most once per day via ShouldSweep.
const SweepInterval = 24 * time.Hour

// ShouldSweep reports whether enough time has passed since lastSweep to
// justify another pass.
func ShouldSweep(lastSweep time.Time, now time.Time) bool {
	return now.Sub(lastSweep) >= SweepInterval
}
