package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type HTTPServer struct {
	Addr string

	// StaticDir, when set to an existing directory, is served at "/".
	// The API remains available under /api/v1/.
	StaticDir string
	DevMode   bool

	Deps MirrorDeps

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	done   chan struct{}
	closed bool
}

func NewHTTPServer(cfg ServerConfig, deps MirrorDeps) *HTTPServer {
	return &HTTPServer{Addr: cfg.ListenAddr, DevMode: cfg.DevMode, Deps: deps.withDefaults()}
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}
	s.Deps = s.Deps.withDefaults()

	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}

	s.done = make(chan struct{})
	handler := NewRouter(s.Deps, RouterOptions{StaticDir: s.StaticDir, DevMode: s.DevMode, Done: s.done})
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.Deps.Logger.Infof("web", "mirror listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	logger := s.Deps.Logger
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		logger.Errorf("web", "serve: %v", err)
	}()

	return nil
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	ln := s.ln
	if s.done != nil {
		close(s.done)
	}
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// URL is the address a viewer on the team network should open. It is
// empty until the server is listening.
func (s *HTTPServer) URL() string {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return ""
	}
	return AdvertisedURL(ln.Addr(), interfaceIPv4s())
}

// AdvertisedURL turns a listener address into a URL. A wildcard host is
// replaced by the first candidate address, or localhost without one.
func AdvertisedURL(addr net.Addr, candidates []net.IP) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return "http://" + addr.String() + "/"
	}
	host := "localhost"
	switch {
	case tcp.IP != nil && !tcp.IP.IsUnspecified():
		host = tcp.IP.String()
	case len(candidates) > 0:
		host = candidates[0].String()
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(tcp.Port)) + "/"
}

// interfaceIPv4s lists non-loopback IPv4 addresses of the host.
func interfaceIPv4s() []net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var out []net.IP
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			out = append(out, ip4)
		}
	}
	return out
}
