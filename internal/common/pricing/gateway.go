// Package pricing implements the regional pricing cache gateway: a
// cache-aside lookup of per-trade, per-ZIP labor and material pricing with
// TTL-bounded staleness and a hard-timeout live fetch fallback.
package pricing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"proposal-workers/internal/common/config"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/common/onebuild"

	"github.com/redis/go-redis/v9"
)

const (
	SourceCache = "cache"
	SourceLive  = "live"
)

// CachedPriceEntry is one regional pricing snapshot. Entries are immutable:
// a refresh inserts a new entry rather than mutating an old one.
type CachedPriceEntry struct {
	TradeID   string                `json:"tradeId"`
	Zipcode   string                `json:"zipcode"`
	Payload   onebuild.TradePricing `json:"payload"`
	FetchedAt time.Time             `json:"fetchedAt"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

// Result is a usable entry plus where it came from.
type Result struct {
	Entry  CachedPriceEntry `json:"entry"`
	Source string           `json:"source"`
}

// Config holds the gateway tunables.
type Config struct {
	CacheTTL            time.Duration
	FetchTimeout        time.Duration
	BaselineHourlyRates map[string]float64
	DefaultBaselineRate float64
	MultiplierFloor     float64
	MultiplierCeiling   float64
}

// ConfigFromApp adapts the application pricing section.
func ConfigFromApp(pc config.PricingConfig) *Config {
	return &Config{
		CacheTTL:            time.Duration(pc.CacheTTLHours) * time.Hour,
		FetchTimeout:        time.Duration(pc.FetchTimeoutMs) * time.Millisecond,
		BaselineHourlyRates: pc.BaselineHourlyRates,
		DefaultBaselineRate: pc.DefaultBaselineRate,
		MultiplierFloor:     pc.MultiplierFloor,
		MultiplierCeiling:   pc.MultiplierCeiling,
	}
}

// Gateway performs best-effort regional pricing lookups. It never returns an
// error: every failure path yields a nil result and the pipeline proceeds
// without market data.
type Gateway struct {
	config   *Config
	redis    *redis.Client
	db       *sql.DB
	provider onebuild.PricingProvider
	logger   logger.Logger
	now      func() time.Time
}

func NewGateway(config *Config, rdb *redis.Client, db *sql.DB, provider onebuild.PricingProvider, log logger.Logger) *Gateway {
	return &Gateway{
		config:   config,
		redis:    rdb,
		db:       db,
		provider: provider,
		logger:   log.WithFields(map[string]interface{}{"component": "pricing-gateway"}),
		now:      time.Now,
	}
}

func cacheKey(tradeID, zipcode string) string {
	return fmt.Sprintf("pricing:%s:%s", tradeID, zipcode)
}

// GetTradePricingBestEffort returns the freshest unexpired cached entry, or
// attempts a single live fetch under the configured timeout, or nil.
func (g *Gateway) GetTradePricingBestEffort(ctx context.Context, tradeID, zipcode string) *Result {
	if tradeID == "" || zipcode == "" {
		return nil
	}

	if entry := g.lookupRedis(ctx, tradeID, zipcode); entry != nil {
		metrics.PricingCacheLookups.WithLabelValues("redis_hit").Inc()
		return &Result{Entry: *entry, Source: SourceCache}
	}

	if entry := g.lookupHistory(ctx, tradeID, zipcode); entry != nil {
		metrics.PricingCacheLookups.WithLabelValues("history_hit").Inc()
		g.primeRedis(ctx, entry)
		return &Result{Entry: *entry, Source: SourceCache}
	}

	metrics.PricingCacheLookups.WithLabelValues("miss").Inc()

	if g.provider == nil || !g.provider.Configured() {
		metrics.PricingLiveFetches.WithLabelValues("skipped").Inc()
		return nil
	}

	return g.fetchLive(ctx, tradeID, zipcode)
}

// lookupRedis returns the entry on the fast path. Redis expires keys on its
// own, but the expiry check is repeated here so an entry written with a
// longer key TTL than its payload TTL is still never served stale.
func (g *Gateway) lookupRedis(ctx context.Context, tradeID, zipcode string) *CachedPriceEntry {
	if g.redis == nil {
		return nil
	}
	val, err := g.redis.Get(ctx, cacheKey(tradeID, zipcode)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.logger.Warn("pricing redis lookup failed", map[string]interface{}{
				"tradeId": tradeID,
				"zipcode": zipcode,
				"error":   err.Error(),
			})
		}
		return nil
	}

	var entry CachedPriceEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil
	}
	if !g.now().Before(entry.ExpiresAt) {
		return nil
	}
	return &entry
}

// lookupHistory returns the most recently fetched unexpired row. Multiple
// rows may exist per key; newest wins.
func (g *Gateway) lookupHistory(ctx context.Context, tradeID, zipcode string) *CachedPriceEntry {
	if g.db == nil {
		return nil
	}

	query := `
		SELECT payload, fetched_at, expires_at
		FROM regional_pricing_cache
		WHERE trade_id = $1 AND zipcode = $2 AND expires_at > $3
		ORDER BY fetched_at DESC
		LIMIT 1`

	var payloadJSON []byte
	entry := CachedPriceEntry{TradeID: tradeID, Zipcode: zipcode}
	err := g.db.QueryRowContext(ctx, query, tradeID, zipcode, g.now().UTC()).
		Scan(&payloadJSON, &entry.FetchedAt, &entry.ExpiresAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			g.logger.Warn("pricing history lookup failed", map[string]interface{}{
				"tradeId": tradeID,
				"zipcode": zipcode,
				"error":   err.Error(),
			})
		}
		return nil
	}

	if err := json.Unmarshal(payloadJSON, &entry.Payload); err != nil {
		return nil
	}
	return &entry
}

// fetchLive performs one provider call bounded by the configured timeout.
// The read-fetch-insert sequence is not transactional: concurrent misses on
// the same key may each fetch and insert. Entries are additive, so the only
// cost is a duplicate provider call.
func (g *Gateway) fetchLive(ctx context.Context, tradeID, zipcode string) *Result {
	fetchCtx, cancel := context.WithTimeout(ctx, g.config.FetchTimeout)
	defer cancel()

	payload, err := g.provider.GetTradePricing(fetchCtx, tradeID, zipcode)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) || fetchCtx.Err() == context.DeadlineExceeded {
			outcome = "timeout"
		}
		metrics.PricingLiveFetches.WithLabelValues(outcome).Inc()
		g.logger.Warn("live pricing fetch failed", map[string]interface{}{
			"tradeId": tradeID,
			"zipcode": zipcode,
			"outcome": outcome,
			"error":   err.Error(),
		})
		return nil
	}

	metrics.PricingLiveFetches.WithLabelValues("success").Inc()

	now := g.now().UTC()
	entry := CachedPriceEntry{
		TradeID:   tradeID,
		Zipcode:   zipcode,
		Payload:   *payload,
		FetchedAt: now,
		ExpiresAt: now.Add(g.config.CacheTTL),
	}

	g.insertHistory(ctx, &entry)
	g.primeRedis(ctx, &entry)

	return &Result{Entry: entry, Source: SourceLive}
}

func (g *Gateway) insertHistory(ctx context.Context, entry *CachedPriceEntry) {
	if g.db == nil {
		return
	}
	payloadJSON, err := json.Marshal(entry.Payload)
	if err != nil {
		return
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO regional_pricing_cache (trade_id, zipcode, payload, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.TradeID, entry.Zipcode, payloadJSON, entry.FetchedAt, entry.ExpiresAt,
	)
	if err != nil {
		g.logger.Warn("pricing history insert failed", map[string]interface{}{
			"tradeId": entry.TradeID,
			"zipcode": entry.Zipcode,
			"error":   err.Error(),
		})
	}
}

func (g *Gateway) primeRedis(ctx context.Context, entry *CachedPriceEntry) {
	if g.redis == nil {
		return
	}
	ttl := entry.ExpiresAt.Sub(g.now())
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := g.redis.Set(ctx, cacheKey(entry.TradeID, entry.Zipcode), data, ttl).Err(); err != nil {
		g.logger.Debug("pricing redis prime failed", map[string]interface{}{
			"tradeId": entry.TradeID,
			"error":   err.Error(),
		})
	}
}
