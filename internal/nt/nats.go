package nt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	defaultNATSBucket = "nt"
	defaultNATSPort   = "4222"
)

// NATSBackend mirrors a JetStream key/value bucket through a watcher. Entry
// paths map to keys by dropping the leading slash and using "." between
// segments ("/components/indexer/x" -> "components.indexer.x").
type NATSBackend struct {
	Bucket string
	Name   string
	// CreateBucket lets a publisher create the bucket when it is missing.
	CreateBucket bool
	Logger       Logger

	mu     sync.Mutex
	conn   *nats.Conn
	kv     nats.KeyValue
	cancel context.CancelFunc
	done   chan struct{}
	synced atomic.Bool
}

func (b *NATSBackend) bucket() string {
	if b.Bucket == "" {
		return defaultNATSBucket
	}
	return b.Bucket
}

func (b *NATSBackend) name() string {
	if b.Name == "" {
		return "driverstation-" + uuid.NewString()[:8]
	}
	return b.Name
}

func pathToKey(path string) string {
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", ".")
}

func keyToPath(key string) string {
	return JoinPath(strings.Split(key, ".")...)
}

// Start returns at once; dialing and binding the bucket happen on the
// backend goroutine so a silent server cannot stall the caller.
func (b *NATSBackend) Start(address string, cache *Cache) error {
	url := withDefaultPort(address, "nats", defaultNATSPort)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return fmt.Errorf("nats backend already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.run(ctx, url, cache)
	return nil
}

func (b *NATSBackend) connect(url string) (*nats.Conn, error) {
	logger := loggerOrNoop(b.Logger)
	conn, err := nats.Connect(url,
		nats.Name(b.name()),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Errorf("nats", "disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("nats", "reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return conn, nil
}

// run dials until the first connection succeeds, then binds the bucket and
// follows the watcher until the context ends. A closed watcher is
// re-established; lost connections are handled by the client's reconnect.
func (b *NATSBackend) run(ctx context.Context, url string, cache *Cache) {
	defer close(b.done)
	logger := loggerOrNoop(b.Logger)

	var conn *nats.Conn
	failing := false
	for conn == nil {
		c, err := b.connect(url)
		if err == nil {
			conn = c
			break
		}
		if !failing {
			logger.Errorf("nats", "%v", err)
			failing = true
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
	defer conn.Close()

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()
	logger.Infof("nats", "connected to %s", conn.ConnectedUrl())

	for {
		if conn.IsConnected() {
			if err := b.watch(ctx, conn, cache); err != nil {
				logger.Errorf("nats", "watch bucket %q: %v", b.bucket(), err)
			}
		}
		b.synced.Store(false)
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (b *NATSBackend) bind(conn *nats.Conn) (nats.KeyValue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	kv, err := js.KeyValue(b.bucket())
	if errors.Is(err, nats.ErrBucketNotFound) && b.CreateBucket {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: b.bucket(), History: 1})
	}
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.kv = kv
	b.mu.Unlock()
	return kv, nil
}

func (b *NATSBackend) watch(ctx context.Context, conn *nats.Conn, cache *Cache) error {
	kv, err := b.bind(conn)
	if err != nil {
		return err
	}
	watcher, err := kv.WatchAll()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil
			}
			if entry == nil {
				// Initial values delivered.
				if !b.synced.Swap(true) {
					loggerOrNoop(b.Logger).Infof("nats", "mirroring bucket %q", b.bucket())
				}
				continue
			}
			applyEntry(cache, entry, b.Logger)
		}
	}
}

func applyEntry(cache *Cache, entry nats.KeyValueEntry, logger Logger) {
	path := keyToPath(entry.Key())
	switch entry.Operation() {
	case nats.KeyValueDelete, nats.KeyValuePurge:
		cache.Delete(path)
	default:
		v, err := DecodeValue(entry.Value())
		if err != nil {
			loggerOrNoop(logger).Errorf("nats", "skip %s: %v", path, err)
			return
		}
		cache.Set(path, v)
	}
}

func (b *NATSBackend) Connected() bool {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	return conn != nil && conn.IsConnected() && b.synced.Load()
}

func (b *NATSBackend) currentKV() (nats.KeyValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.kv == nil {
		return nil, ErrNotConnected
	}
	return b.kv, nil
}

func (b *NATSBackend) Put(ctx context.Context, path string, v Value) error {
	kv, err := b.currentKV()
	if err != nil {
		return err
	}
	data, err := EncodeValue(v)
	if err != nil {
		return err
	}
	if _, err := kv.Put(pathToKey(path), data); err != nil {
		return fmt.Errorf("nats put %s: %w", path, err)
	}
	return nil
}

func (b *NATSBackend) Delete(ctx context.Context, path string) error {
	kv, err := b.currentKV()
	if err != nil {
		return err
	}
	if err := kv.Delete(pathToKey(path)); err != nil {
		return fmt.Errorf("nats delete %s: %w", path, err)
	}
	return nil
}

func (b *NATSBackend) Close() error {
	b.mu.Lock()
	cancel := b.cancel
	done := b.done
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	b.mu.Lock()
	b.conn = nil
	b.kv = nil
	b.cancel = nil
	b.mu.Unlock()
	b.synced.Store(false)
	return nil
}
