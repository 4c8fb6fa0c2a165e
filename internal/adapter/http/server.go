package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/logger"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	server *http.Server
	log    logger.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host               string
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CacheTTL           time.Duration
	DefaultPageSize    int
	MaxPageSize        int
	CORSEnabled        bool
	CORSAllowedOrigins []string
}

// NewServer creates a new HTTP server
func NewServer(
	config ServerConfig,
	repo ports.TicketRepository,
	snapshots ports.SnapshotStore,
	cache ports.Cache,
	log logger.Logger,
) *Server {
	ticketHandler := NewTicketHandler(repo, cache, config.CacheTTL, config.DefaultPageSize, config.MaxPageSize, log)
	analyticsHandler := NewAnalyticsHandler(snapshots, repo, log)

	router := mux.NewRouter()

	ticketHandler.RegisterRoutes(router)
	analyticsHandler.RegisterRoutes(router)

	router.Use(correlationMiddleware)
	router.Use(loggingMiddleware(log))
	if config.CORSEnabled {
		router.Use(corsMiddleware(config.CORSAllowedOrigins))
	}
	router.Use(recoveryMiddleware(log))

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	addr := config.Host + ":" + config.Port

	return &Server{
		addr: addr,
		log:  log,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.log != nil {
		s.log.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
			"addr": s.addr,
		})
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.log != nil {
		s.log.Info(ctx, "Shutting down HTTP server", nil)
	}
	return s.server.Shutdown(ctx)
}
