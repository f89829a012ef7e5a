package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"printbridge/internal/config"
	"printbridge/internal/constants"
	"printbridge/internal/printer"
	"printbridge/internal/security"
)

// snapshot bundles a config with the CORS policy derived from it, so the two
// are always swapped together.
type snapshot struct {
	cfg  *config.Config
	cors *corsPolicy
}

// Server is the HTTP front door: it binds the routes to the admission gate,
// the printer directory and the print dispatcher.
type Server struct {
	snap       atomic.Pointer[snapshot]
	gate       *security.Gate
	directory  *printer.Directory
	dispatcher *printer.Dispatcher
	logger     *zap.Logger
}

func New(cfg *config.Config, gate *security.Gate, directory *printer.Directory, dispatcher *printer.Dispatcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		gate:       gate,
		directory:  directory,
		dispatcher: dispatcher,
		logger:     logger,
	}
	s.SetConfig(cfg)
	return s
}

// SetConfig swaps in a new config snapshot wholesale. In-flight requests keep
// the snapshot they started with.
func (s *Server) SetConfig(cfg *config.Config) {
	s.snap.Store(&snapshot{cfg: cfg, cors: newCORSPolicy(cfg)})
}

// Config returns the current config snapshot.
func (s *Server) Config() *config.Config {
	return s.snap.Load().cfg
}

// Handler builds the full middleware chain and routes. Exposed separately
// from Run for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(constants.EndpointHealth, s.HandleHealth)
	mux.HandleFunc(constants.EndpointPrinters, s.HandlePrinters)
	mux.HandleFunc(constants.EndpointPrint, s.HandlePrint)

	var handler http.Handler = mux
	handler = s.RequestLogMiddleware(handler)
	handler = s.CORSMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)
	return handler
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully. The listen
// address comes from the config present at startup; host/port changes require
// a restart, everything else hot-swaps.
func (s *Server) Run() error {
	addr := s.Config().Address()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		IdleTimeout:       constants.IdleTimeout,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		MaxHeaderBytes:    constants.MaxHeaderBytes,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	s.logger.Info("🚀 print bridge listening", zap.String("addr", addr))

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}

	s.logger.Info("🛑 shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown", zap.Error(err))
	}

	if err := s.gate.Close(); err != nil {
		s.logger.Warn("gate close", zap.Error(err))
	}
	s.logger.Info("✅ stopped")
	return nil
}
