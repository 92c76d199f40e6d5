package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/database"
	"github.com/quantfolio/quantfolio/internal/marketdata"
)

// CachePurgeJob removes expired entries from the quote cache.
type CachePurgeJob struct {
	cache *marketdata.QuoteCache
	log   zerolog.Logger
}

// NewCachePurgeJob creates a cache purge job
func NewCachePurgeJob(cache *marketdata.QuoteCache, log zerolog.Logger) *CachePurgeJob {
	return &CachePurgeJob{
		cache: cache,
		log:   log.With().Str("job", "cache_purge").Logger(),
	}
}

// Name returns the job name
func (j *CachePurgeJob) Name() string { return "cache_purge" }

// Run purges expired quote cache entries
func (j *CachePurgeJob) Run() error {
	removed, err := j.cache.PurgeExpired()
	if err != nil {
		return fmt.Errorf("cache purge failed: %w", err)
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Purged expired quotes")
	}
	return nil
}

// WALCheckpointJob forces periodic WAL checkpoints so the cache database
// file does not grow unbounded between restarts.
type WALCheckpointJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewWALCheckpointJob creates a WAL checkpoint job
func NewWALCheckpointJob(db *database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string { return "wal_checkpoint" }

// Run truncates the WAL file
func (j *WALCheckpointJob) Run() error {
	return j.db.WALCheckpoint("TRUNCATE")
}
