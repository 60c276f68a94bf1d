package web

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "DRIVERSTATION_LISTEN"
	EnvDevMode    = "DRIVERSTATION_DEV"
)

// ServerConfig contains settings for running the HTTP mirror.
//
// The intended defaults differ per binary:
// - dashboard: disabled unless -listen or DRIVERSTATION_LISTEN is set
// - simulator: :8090
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	listenAddr := os.Getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	devMode := false
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode}, nil
}
