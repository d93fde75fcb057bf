// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// render.go caches generated cover PDFs. The key embeds the design version,
// the proposal's last update and the resolved background, so edits to any
// of them (including a library template being removed) produce a new key
// and stale entries simply expire.
package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	renderKeyPrefix = "render:"

	// DefaultRenderTTL is how long a rendered PDF stays cached.
	DefaultRenderTTL = time.Hour
)

// RenderCache stores rendered cover PDFs in Valkey.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRenderCache creates a new render cache backed by the given Valkey client.
func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl == 0 {
		ttl = DefaultRenderTTL
	}
	return &RenderCache{client: client, ttl: ttl}
}

// RenderKey returns the cache key of a rendered design. background is the
// resolved background URL; only its digest is kept since it may be a data
// URI.
func RenderKey(designID uuid.UUID, version int, proposalUpdated time.Time, background, locale string) string {
	h := fnv.New64a()
	h.Write([]byte(background))
	return fmt.Sprintf("%s:%d:%d:%016x:%s", designID, version, proposalUpdated.Unix(), h.Sum64(), locale)
}

// Get retrieves a cached PDF. Returns false on miss.
func (rc *RenderCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, renderKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("render cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("render cache hit", "key", key)
	return val, true
}

// Set stores a rendered PDF with the configured TTL.
func (rc *RenderCache) Set(ctx context.Context, key string, pdf []byte) {
	if err := rc.client.Set(ctx, renderKeyPrefix+key, pdf, rc.ttl).Err(); err != nil {
		slog.Warn("render cache set error", "key", key, "error", err)
	}
}

// InvalidateDesign removes every cached rendering of a design.
func (rc *RenderCache) InvalidateDesign(ctx context.Context, designID uuid.UUID) {
	pattern := renderKeyPrefix + designID.String() + ":*"
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("render cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("render cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("render cache invalidated", "design_id", designID, "deleted", deleted)
	}
}
