package xredis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

// Nil is returned by Get and GetObj when the key does not exist.
const Nil = redis.Nil

// Pipeliner queues writes which are sent in a single round trip by Pipelined.
type Pipeliner interface {
	HSet(ctx context.Context, key string, values map[string]string)
	SetEx(ctx context.Context, key, value string, ttl time.Duration)
	Expire(ctx context.Context, key string, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
}

// Client is the cache store used by repositories. Every fault other than a
// missing key is reported as an errorx.Unavailable error.
type Client interface {
	Ping(ctx context.Context) error
	Close() error

	// Hash
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, values map[string]string) error

	// Single object
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	GetObj(ctx context.Context, key string, v any) error
	SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error

	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Pipelined(ctx context.Context, fn func(Pipeliner) error) error
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	cfg := xcontext.Configs(ctx).Redis
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        poolSize,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, unavailable(err)
	}

	return &client{redisClient: redisClient}, nil
}

func unavailable(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}

	return errorx.Wrap(errorx.Unavailable, err, "cache unavailable")
}

func flatten(values map[string]string) []any {
	args := make([]any, 0, 2*len(values))
	for k, v := range values {
		args = append(args, k, v)
	}

	return args
}

func (c *client) Ping(ctx context.Context) error {
	return unavailable(c.redisClient.Ping(ctx).Err())
}

func (c *client) Close() error {
	return c.redisClient.Close()
}

///// HASH
func (c *client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	values, err := c.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	return values, nil
}

func (c *client) HSet(ctx context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	return unavailable(c.redisClient.HSet(ctx, key, flatten(values)...).Err())
}

///// SINGLE OBJECT
func (c *client) Get(ctx context.Context, key string) (string, error) {
	value, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		return "", unavailable(err)
	}

	return value, nil
}

func (c *client) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return unavailable(c.redisClient.Set(ctx, key, value, ttl).Err())
}

func (c *client) GetObj(ctx context.Context, key string, v any) error {
	value, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(value), v)
}

func (c *client) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.SetEx(ctx, key, string(b), ttl)
}

///// COMMON FEATURE
func (c *client) Del(ctx context.Context, keys ...string) error {
	err := c.redisClient.Del(ctx, keys...).Err()
	if err == nil || err == redis.Nil {
		return nil
	}

	return unavailable(err)
}

func (c *client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return unavailable(c.redisClient.Expire(ctx, key, ttl).Err())
}

func (c *client) Pipelined(ctx context.Context, fn func(Pipeliner) error) error {
	_, err := c.redisClient.TxPipelined(ctx, func(p redis.Pipeliner) error {
		return fn(&pipeliner{p: p})
	})

	return unavailable(err)
}

type pipeliner struct {
	p redis.Pipeliner
}

func (p *pipeliner) HSet(ctx context.Context, key string, values map[string]string) {
	if len(values) > 0 {
		p.p.HSet(ctx, key, flatten(values)...)
	}
}

func (p *pipeliner) SetEx(ctx context.Context, key, value string, ttl time.Duration) {
	p.p.Set(ctx, key, value, ttl)
}

func (p *pipeliner) Expire(ctx context.Context, key string, ttl time.Duration) {
	p.p.Expire(ctx, key, ttl)
}

func (p *pipeliner) Del(ctx context.Context, keys ...string) {
	p.p.Del(ctx, keys...)
}
