package nt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisHash     = "nt"
	defaultRedisPoll     = 40 * time.Millisecond
	defaultRedisTimeout  = 250 * time.Millisecond
	defaultRedisPortText = "6379"
)

// RedisBackend mirrors one Redis hash whose fields are entry paths and whose
// values are JSON payloads. The hash is re-read on every poll; a failed read
// marks the backend disconnected until the next successful one.
type RedisBackend struct {
	Hash         string
	PollInterval time.Duration
	Timeout      time.Duration
	Logger       Logger

	mu        sync.Mutex
	client    *redis.Client
	cancel    context.CancelFunc
	done      chan struct{}
	connected atomic.Bool
}

func (b *RedisBackend) hash() string {
	if b.Hash == "" {
		return defaultRedisHash
	}
	return b.Hash
}

func (b *RedisBackend) timeout() time.Duration {
	if b.Timeout <= 0 {
		return defaultRedisTimeout
	}
	return b.Timeout
}

func (b *RedisBackend) pollInterval() time.Duration {
	if b.PollInterval <= 0 {
		return defaultRedisPoll
	}
	return b.PollInterval
}

func (b *RedisBackend) options(address string) (*redis.Options, error) {
	if strings.HasPrefix(address, "redis://") || strings.HasPrefix(address, "rediss://") {
		opts, err := redis.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: withDefaultPort(address, "", defaultRedisPortText)}, nil
}

func (b *RedisBackend) Start(address string, cache *Cache) error {
	opts, err := b.options(address)
	if err != nil {
		return err
	}
	opts.DialTimeout = b.timeout()
	opts.ReadTimeout = b.timeout()
	opts.WriteTimeout = b.timeout()
	opts.MaxRetries = -1

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return fmt.Errorf("redis backend already started")
	}
	b.client = redis.NewClient(opts)
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.run(ctx, b.client, cache)
	return nil
}

func (b *RedisBackend) run(ctx context.Context, client *redis.Client, cache *Cache) {
	defer close(b.done)
	ticker := time.NewTicker(b.pollInterval())
	defer ticker.Stop()
	for {
		b.sync(ctx, client, cache)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *RedisBackend) sync(ctx context.Context, client *redis.Client, cache *Cache) {
	reqCtx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()
	fields, err := client.HGetAll(reqCtx, b.hash()).Result()
	if err != nil {
		if b.connected.Swap(false) {
			loggerOrNoop(b.Logger).Errorf("redis", "lost %s: %v", client.Options().Addr, err)
		}
		return
	}
	cache.Replace(decodeEntries(fields, b.Logger))
	if !b.connected.Swap(true) {
		loggerOrNoop(b.Logger).Infof("redis", "mirroring hash %q from %s", b.hash(), client.Options().Addr)
	}
}

// decodeEntries drops fields whose payload cannot be decoded.
func decodeEntries(fields map[string]string, logger Logger) map[string]Value {
	entries := make(map[string]Value, len(fields))
	for path, raw := range fields {
		v, err := DecodeValue([]byte(raw))
		if err != nil {
			loggerOrNoop(logger).Errorf("redis", "skip %s: %v", path, err)
			continue
		}
		entries[JoinPath(path)] = v
	}
	return entries
}

func (b *RedisBackend) Connected() bool { return b.connected.Load() }

func (b *RedisBackend) Put(ctx context.Context, path string, v Value) error {
	client := b.currentClient()
	if client == nil {
		return ErrNotConnected
	}
	data, err := EncodeValue(v)
	if err != nil {
		return err
	}
	if err := client.HSet(ctx, b.hash(), JoinPath(path), data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", path, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, path string) error {
	client := b.currentClient()
	if client == nil {
		return ErrNotConnected
	}
	if err := client.HDel(ctx, b.hash(), JoinPath(path)).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", path, err)
	}
	return nil
}

func (b *RedisBackend) currentClient() *redis.Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.client
}

func (b *RedisBackend) Close() error {
	b.mu.Lock()
	client := b.client
	cancel := b.cancel
	done := b.done
	b.client = nil
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	b.connected.Store(false)
	if client == nil {
		return nil
	}
	return client.Close()
}
