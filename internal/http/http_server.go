package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/core/services/execution"
	"gitlab.com/fcv-judge.net/internal/core/services/node"
	"gitlab.com/fcv-judge.net/internal/handlers"
	"gitlab.com/fcv-judge.net/internal/handlers/exec"
	"gitlab.com/fcv-judge.net/internal/handlers/nodes"
)

const shutdownTimeout = 30 * time.Second

type ServiceProvider struct {
	executionService execution.IExecutionService
	// nodeService is nil when the node registry is disabled.
	nodeService node.INodeRegistrationService
}

func NewServiceProvider(
	executionService execution.IExecutionService,
	nodeService node.INodeRegistrationService,
) *ServiceProvider {
	return &ServiceProvider{
		executionService: executionService,
		nodeService:      nodeService,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	WriteTimeout    time.Duration
	ServiceProvider ServiceProvider
	middleware      *handlers.MiddlewareProvider
	rateLimiter     *handlers.RateLimiter
	logger          primary.Logger
}

// NewServer creates the HTTP server. rateLimiter may be nil.
func NewServer(
	port int,
	serviceName string,
	writeTimeout time.Duration,
	serviceProvider ServiceProvider,
	middleware *handlers.MiddlewareProvider,
	rateLimiter *handlers.RateLimiter,
	logger primary.Logger,
) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		WriteTimeout:    writeTimeout,
		ServiceProvider: serviceProvider,
		middleware:      middleware,
		rateLimiter:     rateLimiter,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.ServiceProvider.executionService == nil {
		return fmt.Errorf("execution service is required")
	}

	r := mux.NewRouter()
	r.Use(s.middleware.RequestLoggingMiddleware)
	r.HandleFunc("/healthz", s.healthz).Methods("GET")

	api := r.PathPrefix("/exec").Subrouter()
	api.Use(s.middleware.ServiceAuthMiddleware)

	var limit func(http.HandlerFunc) http.HandlerFunc
	if s.rateLimiter != nil {
		limit = s.rateLimiter.Middleware
	}
	exec.NewExecHandler(s.ServiceProvider.executionService, s.logger).RegisterRoutes(api, limit)
	if s.ServiceProvider.nodeService != nil {
		nodes.NewNodeHandler(s.ServiceProvider.nodeService, s.logger).RegisterRoutes(api)
	}

	s.router = r
	return nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"status":"ok","service":%q}`, s.ServiceName)
}

// Start serves in the background. A listener failure is delivered on the returned
// channel.
func (s *Server) Start(ctx context.Context) <-chan error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}

func (s *Server) Stop() {
	if s.srv == nil {
		return
	}
	s.logger.Info("Shutting down http server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed", "error", err)
	}
}
