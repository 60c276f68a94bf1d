package nt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"
)

type failingBackend struct {
	starts int
	fail   bool
}

func (b *failingBackend) Start(string, *Cache) error {
	b.starts++
	if b.fail {
		return errors.New("boom")
	}
	return nil
}
func (b *failingBackend) Connected() bool { return true }
func (b *failingBackend) Close() error    { return nil }

func TestStartClientIsIdempotent(t *testing.T) {
	backend := &failingBackend{}
	client := NewClient(backend, nil)
	for i := 0; i < 5; i++ {
		client.StartClient("10.47.74.2")
	}
	if backend.starts != 1 {
		t.Errorf("backend started %d times, want 1", backend.starts)
	}
	if !client.IsConnected() {
		t.Error("IsConnected = false after start")
	}
}

func TestStartClientRetriesAfterFailure(t *testing.T) {
	backend := &failingBackend{fail: true}
	client := NewClient(backend, nil)
	client.StartClient("10.47.74.2")
	client.StartClient("10.47.74.2")
	if backend.starts != 2 {
		t.Errorf("backend started %d times, want 2", backend.starts)
	}
	if client.IsConnected() {
		t.Error("IsConnected = true although start failed")
	}
}

type countingLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

func (l *countingLogger) Infof(component, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *countingLogger) Errorf(component, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func TestStartClientLogsRepeatedFailureOnce(t *testing.T) {
	backend := &failingBackend{fail: true}
	logger := &countingLogger{}
	client := NewClient(backend, logger)
	for i := 0; i < 24; i++ {
		client.StartClient("10.47.74.2")
	}
	if len(logger.errors) != 1 {
		t.Fatalf("logged %d errors for 24 failed starts, want 1", len(logger.errors))
	}

	backend.fail = false
	client.StartClient("10.47.74.2")
	if !client.IsConnected() {
		t.Fatal("IsConnected = false after a successful start")
	}
	if len(logger.infos) != 1 {
		t.Errorf("infos=%v, want one start message", logger.infos)
	}
}

// A server that accepts TCP connections but never speaks the protocol must
// not hold up the frame loop.
func TestNATSStartDoesNotBlockOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	defer ln.Close()
	var held []net.Conn
	var heldMu sync.Mutex
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			heldMu.Lock()
			held = append(held, c)
			heldMu.Unlock()
		}
	}()
	defer func() {
		heldMu.Lock()
		for _, c := range held {
			c.Close()
		}
		heldMu.Unlock()
	}()

	client := NewClient(&NATSBackend{}, nil)
	start := time.Now()
	client.StartClient("nats://" + ln.Addr().String())
	elapsed := time.Since(start)
	if elapsed > 200*time.Millisecond {
		t.Fatalf("StartClient took %v", elapsed)
	}
	if client.IsConnected() {
		t.Fatal("connected to a server that never answered")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMemoryBackendOnlineMirror(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	client := NewClient(backend, nil)
	client.StartClient("sim")

	if err := backend.Put(ctx, "/SmartDashboard/Field/effective_goal", DoubleArrayValue([]float64{3, 4})); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if client.IsConnected() {
		t.Fatal("offline store reported connected")
	}
	if client.Cache().Len() != 0 {
		t.Fatal("offline writes reached the mirror")
	}

	backend.SetOnline(true)
	if !client.IsConnected() {
		t.Fatal("online store reported disconnected")
	}
	goal, ok := client.GetTable("SmartDashboard/Field").GetNumberArray("effective_goal")
	if !ok || goal[0] != 3 || goal[1] != 4 {
		t.Errorf("effective_goal = %v, %v", goal, ok)
	}

	if err := backend.Delete(ctx, "/SmartDashboard/Field/effective_goal"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := client.GetTable("SmartDashboard/Field").GetNumberArray("effective_goal"); ok {
		t.Error("deleted entry still mirrored")
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if client.IsConnected() {
		t.Error("closed client reported connected")
	}
}

func TestCacheKeysSorted(t *testing.T) {
	cache := NewCache()
	cache.Set("/b", BooleanValue(true))
	cache.Set("/a", BooleanValue(false))
	keys := cache.Keys()
	if len(keys) != 2 || keys[0] != "/a" || keys[1] != "/b" {
		t.Errorf("Keys = %v", keys)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear = %d", cache.Len())
	}
}
