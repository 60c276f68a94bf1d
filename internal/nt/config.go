package nt

import (
	"fmt"
	"net"
	"os"
	"strings"
)

const (
	EnvBackend = "DRIVERSTATION_BACKEND"
	EnvAddress = "DRIVERSTATION_ADDRESS"
)

const (
	BackendRedis  = "redis"
	BackendNATS   = "nats"
	BackendMQTT   = "mqtt"
	BackendMemory = "memory"
)

// RemoteConfig selects the backend and the robot address.
type RemoteConfig struct {
	Backend string
	Address string
}

func DefaultRemoteConfigFromEnv(defaultBackend, defaultAddress string) (RemoteConfig, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv(EnvBackend)))
	if backend == "" {
		backend = defaultBackend
	}
	if !KnownBackend(backend) {
		return RemoteConfig{}, fmt.Errorf("%s must be one of redis, nats, mqtt, memory (got %q): %w", EnvBackend, backend, ErrUnknownBackend)
	}
	address := strings.TrimSpace(os.Getenv(EnvAddress))
	if address == "" {
		address = defaultAddress
	}
	return RemoteConfig{Backend: backend, Address: address}, nil
}

func KnownBackend(name string) bool {
	switch name {
	case BackendRedis, BackendNATS, BackendMQTT, BackendMemory:
		return true
	}
	return false
}

// NewBackend builds a backend by name with its default settings.
func NewBackend(name string, logger Logger) (Backend, error) {
	switch name {
	case BackendRedis:
		return &RedisBackend{Logger: logger}, nil
	case BackendNATS:
		return &NATSBackend{Logger: logger}, nil
	case BackendMQTT:
		return &MQTTBackend{Logger: logger}, nil
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// withDefaultPort appends port when address has none. A "scheme://" prefix
// is preserved, or added when scheme is non-empty and address has none.
func withDefaultPort(address, scheme, port string) string {
	prefix := ""
	host := address
	if i := strings.Index(address, "://"); i >= 0 {
		prefix = address[:i+3]
		host = address[i+3:]
	} else if scheme != "" {
		prefix = scheme + "://"
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(strings.Trim(host, "[]"), port)
	}
	return prefix + host
}

func loggerOrNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}
