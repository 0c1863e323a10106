package recurrence

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/mo"

	"github.com/cyp0633/daterecur/internal/datemath"
)

// cacheEntry represents a cached compiled rule
type cacheEntry struct {
	rule       *Rule
	expiresAt  time.Time
	accessedAt time.Time
}

// Cache memoizes New by configuration, so equal configurations share one
// compiled Rule. Validation errors are never cached.
type Cache struct {
	entries         map[string]*cacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once

	logger   *slog.Logger
	metrics  *cacheMetrics
	ruleOpts []Option
	now      func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets the logger for cache evictions and for compiled rules.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegisterer enables Prometheus metrics on reg.
func WithRegisterer(reg prometheus.Registerer) CacheOption {
	return func(c *Cache) {
		if reg != nil {
			c.metrics = newCacheMetrics(reg)
		}
	}
}

// withClock replaces the time source. It must be applied before the cleanup
// loop starts, so it is only available as a construction option.
func withClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates a new rule cache with the given configuration
func NewCache(config CacheConfig, opts ...CacheOption) *Cache {
	cache := &Cache{
		entries:         make(map[string]*cacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}
	cache.ruleOpts = []Option{WithLogger(cache.logger)}

	if cache.cleanupInterval > 0 {
		go cache.cleanupLoop()
	}

	return cache
}

// Rule returns the compiled rule for cfg, compiling and caching it on a miss.
func (c *Cache) Rule(cfg Config) (*Rule, error) {
	key := fingerprint(cfg)
	now := c.now()

	c.mutex.Lock()
	if entry, ok := c.entries[key]; ok {
		if now.Before(entry.expiresAt) {
			entry.accessedAt = now
			c.mutex.Unlock()
			c.metrics.hit()
			return entry.rule, nil
		}
		delete(c.entries, key)
		c.metrics.evicted(1)
	}
	c.mutex.Unlock()

	c.metrics.miss()
	rule, err := New(cfg, c.ruleOpts...)
	if err != nil {
		c.metrics.reject()
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = &cacheEntry{
		rule:       rule,
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}

	// If we're over the limit, trigger cleanup
	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.cleanup()
	}
	c.metrics.size(len(c.entries))

	return rule, nil
}

// cleanup removes expired entries and oldest entries if over limit.
// The caller holds the write lock.
func (c *Cache) cleanup() {
	now := c.now()
	removed := 0

	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		keys := slices.Collect(maps.Keys(c.entries))
		sort.Slice(keys, func(i, j int) bool {
			return c.entries[keys[i]].accessedAt.Before(c.entries[keys[j]].accessedAt)
		})

		excess := len(c.entries) - c.maxEntries
		for _, key := range keys[:excess] {
			delete(c.entries, key)
		}
		removed += excess
	}

	if removed > 0 {
		c.logger.Debug("rule cache cleanup", "removed", removed, "remaining", len(c.entries))
	}
	c.metrics.evicted(removed)
	c.metrics.size(len(c.entries))
}

// cleanupLoop runs periodic cleanup
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mutex.Unlock()
	c.metrics.size(0)
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := c.now()

	for _, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache occupancy
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

// fingerprint hashes the normalized configuration. Names are lower-cased and
// dates reduced to their calendar day, so configurations that only differ in
// those respects share an entry.
func fingerprint(cfg Config) string {
	hasher := sha256.New()

	writeDate := func(label string, d mo.Option[time.Time]) {
		if t, ok := d.Get(); ok {
			fmt.Fprintf(hasher, "%s=%s;", label, datemath.Date(t).Format(datemath.Layout))
		}
	}
	writeInterval := func(t RuleType, n mo.Option[int]) {
		if v, ok := n.Get(); ok {
			fmt.Fprintf(hasher, "%s=%d;", t, v)
		}
	}
	writeValue := func(label string, v Value) {
		if v.IsSet() {
			fmt.Fprintf(hasher, "%s=%s;", label, v)
		}
	}
	writeOrdinals := func(t RuleType, m map[int]Value) {
		if m == nil {
			return
		}
		fmt.Fprintf(hasher, "%s={", t)
		for _, k := range slices.Sorted(maps.Keys(m)) {
			fmt.Fprintf(hasher, "%d:%s,", k, m[k])
		}
		fmt.Fprint(hasher, "};")
	}

	writeDate("start", cfg.Start)
	writeDate("end", cfg.End)
	writeValue("startOfWeek", cfg.StartOfWeek)
	writeInterval(DailyInterval, cfg.DailyInterval)
	writeInterval(WeeklyInterval, cfg.WeeklyInterval)
	writeInterval(MonthlyInterval, cfg.MonthlyInterval)
	writeInterval(YearlyInterval, cfg.YearlyInterval)
	writeValue(Weekdays.String(), cfg.Weekdays)
	writeValue(DaysInMonth.String(), cfg.DaysInMonth)
	writeValue(WeeksInMonth.String(), cfg.WeeksInMonth)
	writeOrdinals(OrdinalWeekdaysInMonth, cfg.OrdinalWeekdaysInMonth)
	writeValue(WeeksInYear.String(), cfg.WeeksInYear)
	writeOrdinals(OrdinalWeekdaysInYear, cfg.OrdinalWeekdaysInYear)
	writeValue(MonthsInYear.String(), cfg.MonthsInYear)

	return fmt.Sprintf("%x", hasher.Sum(nil))
}
