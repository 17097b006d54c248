package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheTTL = 30 * time.Second
	// sharedFetchTimeout bounds an upstream call that no single caller owns.
	sharedFetchTimeout = 30 * time.Second
)

// CachedProvider replays a recently fetched set from Redis and collapses
// concurrent upstream fetches into one call.
type CachedProvider struct {
	next   Provider
	client *redis.Client
	key    string
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger
}

var _ Provider = (*CachedProvider)(nil)

// CacheKey builds the Redis key for a source and its filters.
func CacheKey(opts ServiceOptions) string {
	return strings.Join([]string{
		"questionset",
		opts.Source,
		fmt.Sprint(opts.Limit),
		opts.Category,
		opts.Difficulty,
	}, ":")
}

func NewCachedProvider(next Provider, client *redis.Client, key string, ttl time.Duration, logger zerolog.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedProvider{
		next:   next,
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With().Str("component", "question_cache").Logger(),
	}
}

// Fetch returns the cached set when present. Cache failures fall through to the upstream.
func (c *CachedProvider) Fetch(ctx context.Context) (Set, error) {
	if cached, err := c.get(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("question cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	// The shared call runs detached from any one caller so a caller that
	// gives up does not fail the others waiting on it.
	ch := c.group.DoChan(c.key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		set, err := c.next.Fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if len(set) > 0 {
			if err := c.set(fetchCtx, set); err != nil {
				c.logger.Warn().Err(err).Msg("question cache write failed")
			}
		}
		return set, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Set).Clone(), nil
	}
}

func (c *CachedProvider) get(ctx context.Context) (Set, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (c *CachedProvider) set(ctx context.Context, set Set) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}
