// Command heartscore-server exposes the decision core over HTTP:
// chi-routed control endpoints (health, stats) plus a WebSocket
// upgrade per connection that wires into driverconn, the way the
// teacher's server.go registers "/health" and "/ws" against one
// ServeMux — rebuilt here on chi's router and middleware stack so the
// control surface gets request logging and panic recovery for free.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lox/heartscore/internal/decision"
	"github.com/lox/heartscore/internal/driverconn"
	"github.com/lox/heartscore/internal/rules"
)

type CLI struct {
	Addr       string `default:":8080" help:"Listen address"`
	NSamples   int    `default:"1000" help:"Monte Carlo sample budget per decision"`
	MaxRetries int    `default:"32" help:"Sampler feasibility-restart cap"`
	Debug      bool   `help:"Show debug logs"`
}

type server struct {
	cli         CLI
	logger      *log.Logger
	upgrader    websocket.Upgrader
	connections int64
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("heartscore-server"),
		kong.Description("Serves the decision core over HTTP and WebSocket"),
		kong.UsageOnError(),
	)

	level := log.InfoLevel
	if cli.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	srv := &server{
		cli:      cli,
		logger:   logger,
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(logger))

	r.Get("/health", srv.handleHealth)
	r.Get("/stats", srv.handleStats)
	r.Get("/ws", srv.handleWebSocket)

	listener, err := net.Listen("tcp", cli.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "heartscore-server: listen: %v\n", err)
		os.Exit(1)
	}
	actualAddr := listener.Addr().String()

	httpSrv := &http.Server{Handler: r}
	serverErr := make(chan error, 1)
	go func() { serverErr <- httpSrv.Serve(listener) }()

	logger.Info("serving", "addr", actualAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "heartscore-server: %v\n", err)
			os.Exit(1)
		}
	case <-sigChan:
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}
}

func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	l := logger.WithPrefix("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
		})
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := struct {
		Connections int64 `json:"connections"`
	}{
		Connections: atomic.LoadInt64(&s.connections),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// handleWebSocket upgrades the connection and wires it to a fresh
// decision.Bot via driverconn, matching the §6 external interface: one
// connection serves exactly one seat for exactly one round.
func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	atomic.AddInt64(&s.connections, 1)
	bot := decision.New(decision.Config{
		NSamples:   s.cli.NSamples,
		MaxRetries: s.cli.MaxRetries,
		Rules:      rules.Default(),
	}, s.logger)

	dc := driverconn.New(conn, bot, s.logger)
	dc.Start()

	go func() {
		<-dc.Done()
		atomic.AddInt64(&s.connections, -1)
	}()
}
