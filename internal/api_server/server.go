package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docuflow/doc-scanner/internal/config"
	"github.com/docuflow/doc-scanner/internal/extractor"
	"github.com/docuflow/doc-scanner/internal/handlers"
	"github.com/docuflow/doc-scanner/internal/jobs"
	"github.com/docuflow/doc-scanner/internal/service"
	"github.com/docuflow/doc-scanner/internal/store"
	"github.com/docuflow/doc-scanner/internal/ws"
	"github.com/docuflow/doc-scanner/pkg/metrics"
	"github.com/docuflow/doc-scanner/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
	drainTimeout            = 30 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of a doc-scanner API server.
func New(cfg *config.Config, store store.Store, listener net.Listener) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.CorsOrigins,
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	hub := ws.NewHub()

	extractTimeout := time.Duration(s.cfg.Service.ExtractTimeout) * time.Second
	runner := jobs.NewRunner(s.store, hub, extractor.NewPDFExtractor(), extractTimeout)

	uploadService := service.NewUploadService(s.store, hub, s.cfg.Service.MaxUploadSize)

	h := handlers.NewServiceHandler(uploadService, runner)
	h.RegisterRoutes(router)

	healthHandler := handlers.NewHealthHandler(s.store)
	router.Get("/health", healthHandler.Health)
	router.Get("/api/v1/ws", ws.Handler(hub))
	router.Handle("/metrics", promhttp.Handler())

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())

		g, shutdownCtx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			ctxTimeout, cancel := context.WithTimeout(shutdownCtx, gracefulShutdownTimeout)
			defer cancel()
			srv.SetKeepAlivesEnabled(false)
			return srv.Shutdown(ctxTimeout)
		})
		g.Go(func() error {
			// Let in-flight extraction tasks reach a terminal outcome.
			ctxTimeout, cancel := context.WithTimeout(shutdownCtx, drainTimeout)
			defer cancel()
			return runner.Drain(ctxTimeout)
		})
		if err := g.Wait(); err != nil {
			zap.S().Named("api_server").Warnw("shutdown finished with error", "error", err)
		}
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
