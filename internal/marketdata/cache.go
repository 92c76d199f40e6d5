package marketdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantfolio/quantfolio/internal/database"
)

const quoteCacheSchema = `
CREATE TABLE IF NOT EXISTS quote_cache (
    cache_key  TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    expires_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quote_cache_expires ON quote_cache(expires_at);
`

// QuoteCache persists fetched price series in SQLite with a TTL. Payloads are
// msgpack-encoded; a corrupt or expired entry behaves as a miss.
type QuoteCache struct {
	db  *database.DB
	ttl time.Duration
	log zerolog.Logger
}

// NewQuoteCache creates a quote cache on the given database and applies its
// schema.
func NewQuoteCache(db *database.DB, ttl time.Duration, log zerolog.Logger) (*QuoteCache, error) {
	if _, err := db.Exec(quoteCacheSchema); err != nil {
		return nil, fmt.Errorf("failed to apply quote cache schema: %w", err)
	}
	return &QuoteCache{
		db:  db,
		ttl: ttl,
		log: log.With().Str("component", "quote_cache").Logger(),
	}, nil
}

// Get returns the cached series for a key if present and fresh.
func (c *QuoteCache) Get(key string) (PriceSeries, bool) {
	var payload []byte
	err := c.db.QueryRow(
		"SELECT payload FROM quote_cache WHERE cache_key = ? AND expires_at > ?",
		key, time.Now().Unix(),
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache lookup failed")
		}
		return PriceSeries{}, false
	}

	var series PriceSeries
	if err := msgpack.Unmarshal(payload, &series); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached quotes, treating as miss")
		return PriceSeries{}, false
	}
	return series, true
}

// Put stores a series under a key, replacing any previous entry.
func (c *QuoteCache) Put(key string, series PriceSeries) error {
	payload, err := msgpack.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to encode quotes: %w", err)
	}

	now := time.Now()
	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO quote_cache (cache_key, payload, expires_at, created_at) VALUES (?, ?, ?, ?)",
		key, payload, now.Add(c.ttl).Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store quotes: %w", err)
	}
	return nil
}

// PurgeExpired deletes all entries past their TTL and returns the number
// removed. Run periodically by the scheduler.
func (c *QuoteCache) PurgeExpired() (int64, error) {
	result, err := c.db.Exec("DELETE FROM quote_cache WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired quotes: %w", err)
	}
	removed, _ := result.RowsAffected()
	if removed > 0 {
		c.log.Debug().Int64("removed", removed).Msg("Purged expired quote cache entries")
	}
	return removed, nil
}
