package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thedropbears/driverstation/internal/dashboard"
	"github.com/thedropbears/driverstation/internal/input"
	"github.com/thedropbears/driverstation/internal/nt"
	"github.com/thedropbears/driverstation/internal/render"
	"github.com/thedropbears/driverstation/internal/state"
	"github.com/thedropbears/driverstation/internal/system"
	"github.com/thedropbears/driverstation/internal/web"
)

// standbyQRSize is the pixel size of the web mirror QR code.
const standbyQRSize = 128

type App struct {
	Store     *state.Store
	Render    render.Renderer
	Web       web.Server
	Keys      input.Keys
	Remote    *nt.Client
	Dashboard *dashboard.Dashboard
	Logger    Logger

	// Backend names the remote store in status reports.
	Backend string
	// Console is switched to graphics mode while the app runs, for the
	// framebuffer host.
	Console *system.Console
	// EvdevKeys reads keys from /dev/input when the host has no key events
	// of its own.
	EvdevKeys bool

	workers []func(ctx context.Context)

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, renderer render.Renderer, webServer web.Server, keys input.Keys, remote *nt.Client, dash *dashboard.Dashboard) *App {
	return &App{
		Store:     store,
		Render:    renderer,
		Web:       webServer,
		Keys:      keys,
		Remote:    remote,
		Dashboard: dash,
		Logger:    NoopLogger{},
		exitCh:    make(chan error, 1),
	}
}

// Go registers a background worker that runs while the app is started.
func (app *App) Go(worker func(ctx context.Context)) {
	app.workers = append(app.workers, worker)
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs the dashboard until an exit key, Exit, the display closing or
// ctx being done. It blocks and must be called from the main goroutine
// because desktop hosts own the UI thread.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}

	profile := app.Dashboard.Profile()
	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return fmt.Errorf("start renderer: %w", err)
	}
	defer app.Render.Stop()

	if app.Console != nil {
		_ = app.Console.EnterGraphics()
		defer func() { _ = app.Console.Restore() }()
	}

	if err := app.Web.Start(ctx); err != nil {
		app.Logger.Errorf("app", "web start error: %v", err)
		return fmt.Errorf("start web mirror: %w", err)
	}
	defer app.Web.Stop()
	app.showMirrorURL()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup

	if app.Keys != nil {
		if err := app.Keys.Start(loopCtx); err != nil {
			app.Logger.Errorf("input", "keys start error: %v", err)
		}
		if ch, ok := app.Keys.(*input.Channel); ok && app.EvdevKeys {
			system.WatchKeys(loopCtx, app.Logger, func(name string) { ch.Push(input.Event{Name: name}) })
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.handleKeys(loopCtx)
		}()
	}
	for _, worker := range app.workers {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(loopCtx)
		}(worker)
	}

	var exitErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-loopCtx.Done():
		case exitErr = <-app.exitCh:
			cancel()
		}
	}()

	app.Store.SetPhase(state.STANDBY)
	app.Render.SetScene(app.Dashboard)
	app.Logger.Infof("app", "running profile %s towards %s via %s at %.0f fps", profile.Name, profile.Address, app.Backend, profile.FrameRate)
	err := app.Render.RunLoop(loopCtx, profile.FrameInterval(), app.update)

	cancel()
	wg.Wait()
	if app.Keys != nil {
		_ = app.Keys.Stop()
	}
	app.Store.SetPhase(state.STOPPED)
	if app.Remote != nil {
		if cerr := app.Remote.Close(); cerr != nil {
			app.Logger.Errorf("app", "remote close: %v", cerr)
		}
	}
	if err != nil {
		return fmt.Errorf("render loop: %w", err)
	}
	return exitErr
}

// update runs on the host's frame goroutine.
func (app *App) update(dt time.Duration) {
	app.Dashboard.Update(dt)
	snap := app.Dashboard.Snapshot()
	snap.Link.Backend = app.Backend
	app.Store.UpdateFrame(snap)
}

func (app *App) handleKeys(ctx context.Context) {
	events := app.Keys.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Println(ev.Echo())
			app.Logger.Infof("input", "%s", ev.Echo())
			if ev.IsExit() {
				app.Exit(nil)
			}
		}
	}
}

// showMirrorURL publishes the mirror address and puts its QR code on the
// standby screen.
func (app *App) showMirrorURL() {
	withURL, ok := app.Web.(interface{ URL() string })
	if !ok {
		return
	}
	url := withURL.URL()
	if url == "" {
		return
	}
	app.Store.UpdateNetwork(state.NetworkInfo{URL: url})
	img, err := render.GenerateQRCodeImage(url, standbyQRSize)
	if err != nil {
		app.Logger.Errorf("app", "mirror qr code: %v", err)
		return
	}
	app.Dashboard.SetQRCode(img)
	app.Logger.Infof("app", "web mirror at %s", url)
}

func (app *App) Stop() error {
	app.Exit(nil)
	return nil
}
