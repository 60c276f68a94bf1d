package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thedropbears/driverstation/internal/app"
	"github.com/thedropbears/driverstation/internal/assets"
	"github.com/thedropbears/driverstation/internal/dashboard"
	"github.com/thedropbears/driverstation/internal/input"
	"github.com/thedropbears/driverstation/internal/nt"
	"github.com/thedropbears/driverstation/internal/render"
	"github.com/thedropbears/driverstation/internal/render/window"
	"github.com/thedropbears/driverstation/internal/sim"
	"github.com/thedropbears/driverstation/internal/state"
	"github.com/thedropbears/driverstation/internal/system"
	"github.com/thedropbears/driverstation/internal/web"
)

const (
	envStdioLog = "DRIVERSTATION_STDIO_LOG"

	hostWindow    = "window"
	hostFB        = "fb"
	hostOffscreen = "offscreen"

	// demoBootDelay keeps the standby screen up for a moment in demo mode.
	demoBootDelay = 2 * time.Second
)

func main() {
	// Flags
	debug := flag.Bool("debug", false, "enable debug logging to ./driverstation-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	profileName := flag.String("profile", dashboard.DefaultProfile, fmt.Sprintf("built-in layout profile %v", dashboard.ProfileNames()))
	configPath := flag.String("config", "", "optional YAML file overlaying the profile")
	host := flag.String("host", hostWindow, "display host: window, fb or offscreen")
	backendName := flag.String("backend", "", "remote store: redis, nats, mqtt or memory (demo); also "+nt.EnvBackend)
	address := flag.String("address", "", "robot address, overrides the profile; also "+nt.EnvAddress)
	listen := flag.String("listen", "", "serve the read-only web mirror on this address; also "+web.EnvListenAddr)
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	// Local file logger when debug enabled
	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./driverstation-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	base, err := dashboard.LookupProfile(*profileName)
	if err != nil {
		fmt.Println("profile error:", err)
		os.Exit(2)
	}
	profile, err := dashboard.LoadProfile(*configPath, base)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	remoteCfg, err := nt.DefaultRemoteConfigFromEnv(nt.BackendRedis, profile.Address)
	if err != nil {
		fmt.Println("remote config error:", err)
		os.Exit(2)
	}
	if *backendName != "" {
		remoteCfg.Backend = *backendName
	}
	if *address != "" {
		remoteCfg.Address = *address
	}
	profile.Address = remoteCfg.Address

	serverCfg, err := web.DefaultServerConfigFromEnv("")
	if err != nil {
		fmt.Println("web config error:", err)
		os.Exit(2)
	}
	if *listen != "" {
		serverCfg.ListenAddr = *listen
	}

	// Context for lifecycle
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backend, err := nt.NewBackend(remoteCfg.Backend, logger)
	if err != nil {
		fmt.Println("backend error:", err)
		os.Exit(2)
	}
	client := nt.NewClient(backend, logger)

	var background image.Image
	if profile.UseBackgroundImage {
		if background, err = assets.FieldImage(); err != nil {
			logger.Errorf("main", "%v", err)
		}
	}
	dash := dashboard.New(profile, client, dashboard.Options{Logger: logger, Background: background})

	keys := input.NewChannel(32)
	var renderer render.Renderer
	var console *system.Console
	switch *host {
	case hostWindow:
		w := window.New(profile.Caption, profile.WindowWidth, profile.WindowHeight)
		w.Logger = logger
		w.Keys = keys
		renderer = w
	case hostFB:
		fb := render.NewFBRenderer()
		fb.Logger = logger
		renderer = fb
		console = &system.Console{Logger: logger}
	case hostOffscreen:
		off := render.NewOffscreenRenderer(profile.WindowWidth, profile.WindowHeight)
		off.Logger = logger
		renderer = off
	default:
		fmt.Printf("unknown host %q (want window, fb or offscreen)\n", *host)
		os.Exit(2)
	}

	store := state.NewStore()
	var server web.Server = &web.NoopServer{}
	if serverCfg.ListenAddr != "" {
		httpServer := web.NewHTTPServer(serverCfg, web.MirrorDeps{
			State:  store,
			Frames: renderer.Frames(),
			Logger: logger,
		})
		httpServer.Deps.URL = httpServer.URL
		server = httpServer
	}

	// App construction
	a := app.New(store, renderer, server, keys, client, dash)
	a.Logger = logger
	a.Backend = remoteCfg.Backend
	a.Console = console
	a.EvdevKeys = *host != hostWindow

	if mem, ok := backend.(*nt.MemoryBackend); ok {
		robot := sim.NewRobot(profile.FieldWidth, profile.FieldHeight)
		a.Go(func(ctx context.Context) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(demoBootDelay):
			}
			mem.SetOnline(true)
			robot.Run(ctx, mem, profile.FrameInterval(), logger)
		})
	}

	if err := a.Start(ctx); err != nil {
		fmt.Println("app error:", err)
		os.Exit(1)
	}
}
