package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/FocuswithJustin/corpus2alpino/core/alpino"
	"github.com/FocuswithJustin/corpus2alpino/core/cas"
	"github.com/FocuswithJustin/corpus2alpino/core/sqlite"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

const parseSchema = `CREATE TABLE IF NOT EXISTS parses (
	key        TEXT PRIMARY KEY,
	annotation TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`

// ParseCacheConfig configures a ParseCache.
type ParseCacheConfig struct {
	// Path of the SQLite database. Empty keeps the cache in memory only.
	Path string

	// MaxEntries bounds the in-memory LRU (0 = DefaultConfig().MaxSize).
	MaxEntries int
}

// ParseStats counts cache lookups.
type ParseStats struct {
	MemoryHits int64
	DiskHits   int64
	Misses     int64
}

// ParseCache is an alpino.Parser that remembers the trees of its wrapped
// parser. Entries are keyed on parser version, sentence id and text, so a
// parser upgrade invalidates them. Only successful parses are stored.
type ParseCache struct {
	parser alpino.Parser
	lru    Cache[string, string]
	db     *sql.DB

	memoryHits atomic.Int64
	diskHits   atomic.Int64
	misses     atomic.Int64
}

// NewParseCache wraps parser with an LRU and, when cfg.Path is set, a
// persistent SQLite table.
func NewParseCache(parser alpino.Parser, cfg ParseCacheConfig) (*ParseCache, error) {
	lruConfig := DefaultConfig()
	if cfg.MaxEntries > 0 {
		lruConfig.MaxSize = cfg.MaxEntries
	}
	c := &ParseCache{
		parser: parser,
		lru:    NewLRUCache[string, string](lruConfig),
	}

	if cfg.Path != "" {
		db, err := sqlite.OpenCache(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open parse cache: %w", err)
		}
		if _, err := db.Exec(parseSchema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create parse cache schema: %w", err)
		}
		c.db = db
	}
	return c, nil
}

// Info returns the wrapped parser's info.
func (c *ParseCache) Info() alpino.Info {
	return c.parser.Info()
}

// ParseLine returns a cached tree or parses and stores it.
func (c *ParseCache) ParseLine(ctx context.Context, text, id string) (string, error) {
	key := cas.Key(c.parser.Info().Version, id, text)

	if xml, ok := c.lru.Get(key); ok {
		c.memoryHits.Add(1)
		return xml, nil
	}
	if xml, ok := c.load(ctx, key); ok {
		c.diskHits.Add(1)
		c.lru.Put(key, xml)
		return xml, nil
	}

	c.misses.Add(1)
	xml, err := c.parser.ParseLine(ctx, text, id)
	if err != nil {
		return "", err
	}
	c.lru.Put(key, xml)
	c.store(ctx, key, xml)
	return xml, nil
}

// load reads a tree from disk. Database errors count as misses.
func (c *ParseCache) load(ctx context.Context, key string) (string, bool) {
	if c.db == nil {
		return "", false
	}
	var xml string
	err := c.db.QueryRowContext(ctx, `SELECT annotation FROM parses WHERE key = ?`, key).Scan(&xml)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		logging.WarnContext(ctx, "parse cache lookup failed", "error", err.Error())
		return "", false
	}
	return xml, true
}

func (c *ParseCache) store(ctx context.Context, key, xml string) {
	if c.db == nil {
		return
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO parses (key, annotation, created_at) VALUES (?, ?, ?)`,
		key, xml, time.Now().Unix())
	if err != nil {
		logging.WarnContext(ctx, "parse cache store failed", "error", err.Error())
	}
}

// Stats returns lookup counters.
func (c *ParseCache) Stats() ParseStats {
	return ParseStats{
		MemoryHits: c.memoryHits.Load(),
		DiskHits:   c.diskHits.Load(),
		Misses:     c.misses.Load(),
	}
}

// Close releases the database.
func (c *ParseCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
