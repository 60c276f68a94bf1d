package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/thedropbears/driverstation/internal/dashboard"
	"github.com/thedropbears/driverstation/internal/input"
	"github.com/thedropbears/driverstation/internal/nt"
	"github.com/thedropbears/driverstation/internal/render"
	"github.com/thedropbears/driverstation/internal/state"
	"github.com/thedropbears/driverstation/internal/web"
)

type testRig struct {
	app      *App
	backend  *nt.MemoryBackend
	keys     *input.Channel
	renderer *render.OffscreenRenderer
}

func newTestRig(t *testing.T, server web.Server) *testRig {
	t.Helper()
	profile, err := dashboard.LookupProfile("compact")
	if err != nil {
		t.Fatal(err)
	}
	profile.FrameRate = 100
	backend := nt.NewMemoryBackend()
	client := nt.NewClient(backend, nil)
	dash := dashboard.New(profile, client, dashboard.Options{})
	renderer := render.NewOffscreenRenderer(profile.WindowWidth, profile.WindowHeight)
	keys := input.NewChannel(8)
	a := New(state.NewStore(), renderer, server, keys, client, dash)
	a.Backend = nt.BackendMemory
	return &testRig{app: a, backend: backend, keys: keys, renderer: renderer}
}

func runAsync(a *App) <-chan error {
	done := make(chan error, 1)
	go func() { done <- a.Start(context.Background()) }()
	return done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEscapeStopsApp(t *testing.T) {
	rig := newTestRig(t, &web.NoopServer{})
	done := runAsync(rig.app)

	waitFor(t, "standby frames", func() bool { return rig.app.Store.Snapshot().Frame > 2 })
	if got := rig.app.Store.Snapshot(); got.Phase != state.STANDBY || !strings.HasPrefix(got.Status, "No connection") {
		t.Fatalf("snapshot=%+v", got)
	}

	rig.backend.SetOnline(true)
	waitFor(t, "connection", func() bool { return rig.app.Store.Snapshot().Phase == state.CONNECTED })
	if got := rig.app.Store.Snapshot().Link.Backend; got != nt.BackendMemory {
		t.Fatalf("backend=%q", got)
	}

	rig.keys.Push(input.Event{Name: "A"})
	rig.keys.Push(input.Event{Name: input.KeyEscape})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop on Escape")
	}
	if rig.app.Store.Snapshot().Phase != state.STOPPED {
		t.Fatal("phase not stopped")
	}
	if rig.renderer.Frames().Seq() == 0 {
		t.Fatal("no frames rendered")
	}
}

func TestExitReturnsError(t *testing.T) {
	rig := newTestRig(t, &web.NoopServer{})
	done := runAsync(rig.app)
	waitFor(t, "first frame", func() bool { return rig.app.Store.Snapshot().Frame > 0 })

	boom := errors.New("boom")
	rig.app.Exit(boom)
	rig.app.Exit(errors.New("ignored"))
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("err=%v want boom", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestWorkersAndMirrorURL(t *testing.T) {
	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: "127.0.0.1:0"}, web.MirrorDeps{})
	rig := newTestRig(t, server)
	server.Deps.State = rig.app.Store
	server.Deps.Frames = rig.renderer.Frames()
	server.Deps.URL = server.URL

	ran := make(chan struct{})
	rig.app.Go(func(ctx context.Context) {
		close(ran)
		<-ctx.Done()
	})
	done := runAsync(rig.app)

	<-ran
	waitFor(t, "frames", func() bool { return rig.app.Store.Snapshot().Frame > 0 })
	if url := rig.app.Store.Snapshot().Network.URL; !strings.HasPrefix(url, "http://127.0.0.1:") {
		t.Fatalf("mirror url=%q", url)
	}

	_ = rig.app.Stop()
	if err := <-done; err != nil {
		t.Fatalf("start: %v", err)
	}
	if !rig.app.Dashboard.Scene().QRCode.Visible {
		t.Fatal("standby qr code hidden")
	}
}

func TestFileLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileLogger(&buf)
	l.Infof("conn", "connected to %s", "10.47.74.2")
	l.Errorf("nt", "boom")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%q", lines)
	}
	if !strings.Contains(lines[0], " [INFO] conn: connected to 10.47.74.2") {
		t.Fatalf("info line=%q", lines[0])
	}
	if !strings.Contains(lines[1], " [ERROR] nt: boom") {
		t.Fatalf("error line=%q", lines[1])
	}
}
