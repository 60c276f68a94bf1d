package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thedropbears/driverstation/internal/app"
	"github.com/thedropbears/driverstation/internal/dashboard"
	"github.com/thedropbears/driverstation/internal/nt"
	"github.com/thedropbears/driverstation/internal/sim"
	"github.com/thedropbears/driverstation/internal/web"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8090")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}
	remote, err := nt.DefaultRemoteConfigFromEnv(nt.BackendNATS, "127.0.0.1")
	if err != nil {
		fmt.Println("remote config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http control listen address; also configurable via "+web.EnvListenAddr)
	backendName := flag.String("backend", remote.Backend, "store to publish into: redis, nats or mqtt; also "+nt.EnvBackend)
	address := flag.String("address", remote.Address, "store address; also "+nt.EnvAddress)
	rate := flag.Float64("rate", 24, "publish rate in Hz")
	profileName := flag.String("profile", dashboard.DefaultProfile, "profile whose field size the robot drives on")
	flag.Parse()

	if *backendName == nt.BackendMemory {
		fmt.Println("the memory backend only works in-process; run the dashboard with -backend memory instead")
		os.Exit(2)
	}
	if *rate <= 0 || *rate > float64(time.Second/sim.MinInterval) {
		fmt.Printf("rate must be in (0, %d] Hz\n", time.Second/sim.MinInterval)
		os.Exit(2)
	}
	profile, err := dashboard.LookupProfile(*profileName)
	if err != nil {
		fmt.Println("profile error:", err)
		os.Exit(2)
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := app.NewFileLogger(os.Stdout)
	backend, err := nt.NewBackend(*backendName, logger)
	if err != nil {
		fmt.Println("backend error:", err)
		os.Exit(2)
	}
	if nb, ok := backend.(*nt.NATSBackend); ok {
		nb.CreateBucket = true
	}
	writer, ok := backend.(nt.Writer)
	if !ok {
		fmt.Printf("backend %s cannot publish\n", *backendName)
		os.Exit(2)
	}
	client := nt.NewClient(backend, logger)
	client.StartClient(*address)
	defer client.Close()

	robot := sim.NewRobot(profile.FieldWidth, profile.FieldHeight)
	control := NewSimControl(robot, *backendName, *address)
	go robot.Run(processCtx, writer, time.Duration(float64(time.Second) / *rate), logger)

	server := &http.Server{
		Addr:              *listenAddr,
		Handler:           control.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-processCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	fmt.Println("Driver station simulator publishing to", *backendName, *address)
	fmt.Println("Control: http://" + trimLeadingColon(*listenAddr) + "/sim/state")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Println("server error:", err)
		os.Exit(1)
	}
}

// trimLeadingColon turns ":8090" into a loopback address for the banner.
func trimLeadingColon(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
