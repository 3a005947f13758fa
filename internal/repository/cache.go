package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/questx-lab/rewardbot/pkg/xredis"
)

const defaultCacheTTL = 24 * time.Hour

func cacheTTL(ctx context.Context) time.Duration {
	if ttl := xcontext.Configs(ctx).Cache.TTL; ttl > 0 {
		return ttl
	}

	return defaultCacheTTL
}

func userKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

func userRankKey(userID int64) string {
	return fmt.Sprintf("user:%d:rank", userID)
}

func taskKey(taskID int64) string {
	return fmt.Sprintf("task:%d", taskID)
}

func referralKey(userID int64) string {
	return fmt.Sprintf("referral:%d", userID)
}

func referralsByUserKey(referredBy int64) string {
	return fmt.Sprintf("referrals_by_user:%d", referredBy)
}

func referralBreakdownKey(referredBy int64) string {
	return fmt.Sprintf("referral_breakdown:%d", referredBy)
}

const (
	allTasksKey       = "tasks:all"
	leaderboardTopKey = "leaderboard:top5"
)

// projection decides whether a cached hash holds everything needed to rebuild
// an entity. Anything else is a miss.
type projection interface {
	complete(values map[string]string) bool
}

// hashSchema requires every field in required to be present and non-empty and
// every field in optional to be present.
type hashSchema struct {
	required []string
	optional []string
}

func (s hashSchema) complete(values map[string]string) bool {
	for _, f := range s.required {
		if values[f] == "" {
			return false
		}
	}

	for _, f := range s.optional {
		if _, ok := values[f]; !ok {
			return false
		}
	}

	return true
}

// readHash returns the hash at key only if p accepts it. Cache faults are
// logged and reported as a miss.
func readHash(ctx context.Context, c xredis.Client, key string, p projection) (map[string]string, bool) {
	values, err := c.HGetAll(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get %s from cache: %v", key, err)
		return nil, false
	}

	if len(values) == 0 {
		return nil, false
	}

	if !p.complete(values) {
		xcontext.Logger(ctx).Debugf("Ignore incomplete cache entry %s", key)
		return nil, false
	}

	return values, true
}

// writeHash replaces the hash at key in one round trip so that readers never
// observe fields of an older projection.
func writeHash(ctx context.Context, c xredis.Client, key string, values map[string]string) {
	ttl := cacheTTL(ctx)
	err := c.Pipelined(ctx, func(p xredis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, values)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot set %s to cache: %v", key, err)
	}
}

// populate runs fn, which fills the cache from a read, unless ctx is inside a
// unit of work. Such a read may predate a commit of another writer, and its
// row must not replace what that writer left behind.
func populate(ctx context.Context, fn func()) {
	if xcontext.InTransaction(ctx) {
		return
	}

	fn()
}

func readObj(ctx context.Context, c xredis.Client, key string, v any) bool {
	err := c.GetObj(ctx, key, v)
	if err == nil {
		return true
	}

	if !errors.Is(err, xredis.Nil) {
		xcontext.Logger(ctx).Warnf("Cannot get %s from cache: %v", key, err)
	}

	return false
}

func writeObj(ctx context.Context, c xredis.Client, key string, v any) {
	if err := c.SetObj(ctx, key, v, cacheTTL(ctx)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot set %s to cache: %v", key, err)
	}
}

func invalidate(ctx context.Context, c xredis.Client, keys ...string) {
	if len(keys) == 0 {
		return
	}

	if err := c.Del(ctx, keys...); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate cache keys %v: %v", keys, err)
	}
}

// decodeHash fills out from the string values of a cached hash.
func decodeHash(values map[string]string, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}
