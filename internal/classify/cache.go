package classify

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
)

const matchCacheSchema = `
CREATE TABLE IF NOT EXISTS template_matches (
	content_hash TEXT PRIMARY KEY,
	doc_type     TEXT NOT NULL,
	confidence   REAL NOT NULL,
	hits         INTEGER NOT NULL DEFAULT 0,
	successes    INTEGER NOT NULL DEFAULT 0,
	failures     INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// CachedMatch is one remembered classification, with usage counters.
type CachedMatch struct {
	DocType    constants.DocumentType
	Confidence float64
	Hits       int
	Successes  int
	Failures   int
}

// MatchCache remembers which type a given content hash classified as, so a
// re-submitted document skips correlation entirely. SQLite serializes the
// writers; readers share the registry-style append-only view.
type MatchCache struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenMatchCache opens (creating if needed) the cache database at path.
// Pass ":memory:" for an ephemeral cache.
func OpenMatchCache(path string, logger *slog.Logger) (*MatchCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError(common.CodeCacheError, "open match cache "+path, err)
	}
	// One connection keeps SQLite's single-writer semantics trivial.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(matchCacheSchema); err != nil {
		db.Close()
		return nil, common.NewAppError(common.CodeCacheError, "initialize match cache schema", err)
	}
	return &MatchCache{db: db, logger: logger}, nil
}

// Lookup returns the remembered match for a content hash, or nil when the
// hash has never been seen. A hit bumps the hit counter.
func (c *MatchCache) Lookup(ctx context.Context, contentHash []byte) (*CachedMatch, error) {
	key := hex.EncodeToString(contentHash)
	row := c.db.QueryRowContext(ctx,
		`SELECT doc_type, confidence, hits, successes, failures FROM template_matches WHERE content_hash = ?`, key)

	var (
		m  CachedMatch
		dt string
	)
	err := row.Scan(&dt, &m.Confidence, &m.Hits, &m.Successes, &m.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeCacheError, "match cache lookup", err)
	}
	m.DocType = constants.DocumentType(dt)

	if _, err := c.db.ExecContext(ctx,
		`UPDATE template_matches SET hits = hits + 1, updated_at = CURRENT_TIMESTAMP WHERE content_hash = ?`, key); err != nil {
		c.logger.Warn("classify.cache.hit_count_failed", "error", err)
	}
	m.Hits++
	return &m, nil
}

// Store upserts the match for a content hash. Re-storing an existing hash
// replaces the type and confidence but keeps the counters.
func (c *MatchCache) Store(ctx context.Context, contentHash []byte, docType constants.DocumentType, confidence float64) error {
	key := hex.EncodeToString(contentHash)
	_, err := c.db.ExecContext(ctx, `
INSERT INTO template_matches (content_hash, doc_type, confidence)
VALUES (?, ?, ?)
ON CONFLICT(content_hash) DO UPDATE SET
	doc_type   = excluded.doc_type,
	confidence = excluded.confidence,
	updated_at = CURRENT_TIMESTAMP`,
		key, string(docType), confidence)
	if err != nil {
		return common.NewAppError(common.CodeCacheError, "match cache store", err)
	}
	return nil
}

// RecordOutcome feeds the pipeline's terminal verdict back into the cache,
// so persistently failing entries are visible and can be pruned.
func (c *MatchCache) RecordOutcome(ctx context.Context, contentHash []byte, success bool) error {
	column := "failures"
	if success {
		column = "successes"
	}
	key := hex.EncodeToString(contentHash)
	_, err := c.db.ExecContext(ctx,
		`UPDATE template_matches SET `+column+` = `+column+` + 1, updated_at = CURRENT_TIMESTAMP WHERE content_hash = ?`, key)
	if err != nil {
		return common.NewAppError(common.CodeCacheError, "match cache outcome update", err)
	}
	return nil
}

// Forget drops one entry, e.g. after its reference template is replaced.
func (c *MatchCache) Forget(ctx context.Context, contentHash []byte) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM template_matches WHERE content_hash = ?`, hex.EncodeToString(contentHash))
	if err != nil {
		return common.NewAppError(common.CodeCacheError, "match cache delete", err)
	}
	return nil
}

func (c *MatchCache) Close() error {
	return c.db.Close()
}
