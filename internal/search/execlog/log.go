// Package execlog keeps the append-only record of query executions in the
// local store. Entries expire 30 days after execution; expiry is swept
// lazily on every read, never by a background timer.
package execlog

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/common/logger"
	"trial-search/internal/common/metrics"
	"trial-search/internal/models"
	"trial-search/internal/search/persistence"
)

// RetentionDays is how long an execution entry survives.
const RetentionDays = 30

const namespace = "execution-log"

// Log is the execution history backed by the local store.
type Log struct {
	local  persistence.LocalStore
	logger logger.Logger
	now    func() time.Time
}

func New(local persistence.LocalStore, log logger.Logger) *Log {
	return &Log{
		local:  local,
		logger: log.WithFields(map[string]interface{}{"component": "execution-log"}),
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

// Append writes one execution entry, unconditionally and without
// deduplication. Zero ID and ExecutedAt are filled in.
func (l *Log) Append(ctx context.Context, entry models.QueryLogEntry) (models.QueryLogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = l.now().UTC()
	}

	entries := l.read(ctx)
	entries = append(entries, entry)

	if err := l.write(ctx, entries); err != nil {
		return models.QueryLogEntry{}, err
	}

	metrics.ExecutionLogAppends.Inc()
	return entry, nil
}

// ReadAll sweeps expired entries, persists the pruned collection when
// anything was removed, and returns the survivors newest first along with
// the number just pruned (for the user-facing notice).
func (l *Log) ReadAll(ctx context.Context) ([]models.QueryLogEntry, int, error) {
	entries := l.read(ctx)
	cutoff := l.now().UTC().Add(-RetentionDays * 24 * time.Hour)

	kept := make([]models.QueryLogEntry, 0, len(entries))
	pruned := 0
	for _, entry := range entries {
		// now - executedAt >= 30d means expired.
		if !entry.ExecutedAt.After(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, entry)
	}

	if pruned > 0 {
		if err := l.write(ctx, kept); err != nil {
			return nil, 0, err
		}
		metrics.ExecutionLogPruned.Add(float64(pruned))
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ExecutedAt.After(kept[j].ExecutedAt)
	})

	return kept, pruned, nil
}

// DaysRemaining reports how many whole days the entry has left before the
// sweep removes it, floored at zero. Used for display banding only.
func (l *Log) DaysRemaining(entry models.QueryLogEntry) int {
	elapsed := l.now().UTC().Sub(entry.ExecutedAt.UTC())
	remaining := RetentionDays - int(elapsed.Hours()/24)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *Log) read(ctx context.Context) []models.QueryLogEntry {
	data, err := l.local.ReadCollection(ctx, namespace)
	if err != nil {
		l.logger.Warn("execution log read failed", map[string]interface{}{
			"error": err.Error(),
		})
		return []models.QueryLogEntry{}
	}
	if len(data) == 0 {
		return []models.QueryLogEntry{}
	}

	var entries []models.QueryLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		corrupt := stderrors.NewLocalStoreCorruptError(namespace, err)
		l.logger.Warn("execution log corrupt, starting empty", map[string]interface{}{
			"error": corrupt.Error(),
		})
		return []models.QueryLogEntry{}
	}

	return entries
}

func (l *Log) write(ctx context.Context, entries []models.QueryLogEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return stderrors.NewLocalStoreFailedError(namespace, err)
	}
	if err := l.local.WriteCollection(ctx, namespace, data); err != nil {
		return stderrors.NewLocalStoreFailedError(namespace, err)
	}
	return nil
}
