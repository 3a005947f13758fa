package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/xredis"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

type memoryEntry struct {
	hash     map[string]string
	str      string
	isHash   bool
	expireAt time.Time
}

// MemoryRedisClient is an in-process xredis.Client. Setting Down makes every
// call fail like an unreachable server.
type MemoryRedisClient struct {
	Down atomic.Bool

	mutex sync.Mutex
	data  map[string]*memoryEntry
	now   func() time.Time
}

func NewMemoryRedisClient() *MemoryRedisClient {
	return &MemoryRedisClient{data: make(map[string]*memoryEntry), now: time.Now}
}

func (c *MemoryRedisClient) fault() error {
	if c.Down.Load() {
		return errorx.Wrap(errorx.Unavailable, errConnRefused, "cache unavailable")
	}

	return nil
}

// entry returns the live entry of key. The caller must hold the mutex.
func (c *MemoryRedisClient) entry(key string) *memoryEntry {
	e, ok := c.data[key]
	if !ok {
		return nil
	}

	if !e.expireAt.IsZero() && !c.now().Before(e.expireAt) {
		delete(c.data, key)
		return nil
	}

	return e
}

// Has reports whether key exists and has not expired.
func (c *MemoryRedisClient) Has(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.entry(key) != nil
}

// TTL returns the remaining time to live of key, or zero if key has none.
func (c *MemoryRedisClient) TTL(key string) time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := c.entry(key)
	if e == nil || e.expireAt.IsZero() {
		return 0
	}

	return e.expireAt.Sub(c.now())
}

func (c *MemoryRedisClient) Ping(ctx context.Context) error {
	return c.fault()
}

func (c *MemoryRedisClient) Close() error {
	return nil
}

func (c *MemoryRedisClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := c.fault(); err != nil {
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	result := map[string]string{}
	if e := c.entry(key); e != nil && e.isHash {
		for k, v := range e.hash {
			result[k] = v
		}
	}

	return result, nil
}

func (c *MemoryRedisClient) HSet(ctx context.Context, key string, values map[string]string) error {
	if err := c.fault(); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.hset(key, values)
	return nil
}

func (c *MemoryRedisClient) hset(key string, values map[string]string) {
	e := c.entry(key)
	if e == nil || !e.isHash {
		e = &memoryEntry{hash: map[string]string{}, isHash: true}
		c.data[key] = e
	}

	for k, v := range values {
		e.hash[k] = v
	}
}

func (c *MemoryRedisClient) Get(ctx context.Context, key string) (string, error) {
	if err := c.fault(); err != nil {
		return "", err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := c.entry(key)
	if e == nil || e.isHash {
		return "", xredis.Nil
	}

	return e.str, nil
}

func (c *MemoryRedisClient) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.fault(); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.setEx(key, value, ttl)
	return nil
}

func (c *MemoryRedisClient) setEx(key, value string, ttl time.Duration) {
	e := &memoryEntry{str: value}
	if ttl > 0 {
		e.expireAt = c.now().Add(ttl)
	}
	c.data[key] = e
}

func (c *MemoryRedisClient) GetObj(ctx context.Context, key string, v any) error {
	value, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(value), v)
}

func (c *MemoryRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.SetEx(ctx, key, string(b), ttl)
}

func (c *MemoryRedisClient) Del(ctx context.Context, keys ...string) error {
	if err := c.fault(); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}

	return nil
}

func (c *MemoryRedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.fault(); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.expire(key, ttl)
	return nil
}

func (c *MemoryRedisClient) expire(key string, ttl time.Duration) {
	if e := c.entry(key); e != nil {
		e.expireAt = c.now().Add(ttl)
	}
}

func (c *MemoryRedisClient) Pipelined(ctx context.Context, fn func(xredis.Pipeliner) error) error {
	if err := c.fault(); err != nil {
		return err
	}

	p := &memoryPipeliner{}
	if err := fn(p); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, op := range p.ops {
		op(c)
	}

	return nil
}

type memoryPipeliner struct {
	ops []func(c *MemoryRedisClient)
}

func (p *memoryPipeliner) HSet(ctx context.Context, key string, values map[string]string) {
	p.ops = append(p.ops, func(c *MemoryRedisClient) { c.hset(key, values) })
}

func (p *memoryPipeliner) SetEx(ctx context.Context, key, value string, ttl time.Duration) {
	p.ops = append(p.ops, func(c *MemoryRedisClient) { c.setEx(key, value, ttl) })
}

func (p *memoryPipeliner) Expire(ctx context.Context, key string, ttl time.Duration) {
	p.ops = append(p.ops, func(c *MemoryRedisClient) { c.expire(key, ttl) })
}

func (p *memoryPipeliner) Del(ctx context.Context, keys ...string) {
	p.ops = append(p.ops, func(c *MemoryRedisClient) {
		for _, key := range keys {
			delete(c.data, key)
		}
	})
}
