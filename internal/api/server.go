// Package api implements the HTTP surface: synchronous extraction, the split
// async run endpoints, and the two delivery endpoints (relay and transcode).
package api

import (
	"log/slog"
	"net/http"

	"tubetap/internal/config"
	"tubetap/internal/extract"
	"tubetap/internal/history"
	"tubetap/internal/httputil"
	"tubetap/internal/provider"
)

// Server holds the handler dependencies. History is optional; when nil,
// extractions are simply not recorded.
type Server struct {
	cfg     *config.Config
	orch    *extract.Orchestrator
	runner  provider.Runner
	store   *history.Store
	stream  *http.Client
	logger  *slog.Logger
	limiter *ipLimiter
}

// NewServer wires the HTTP surface.
func NewServer(cfg *config.Config, orch *extract.Orchestrator, runner provider.Runner, store *history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		orch:    orch,
		runner:  runner,
		store:   store,
		stream:  httputil.NewStreamClient(),
		logger:  logger,
		limiter: newIPLimiter(cfg.RateLimitRPM),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("GET /api/download", s.handleDownload)
	mux.HandleFunc("GET /api/transcode", s.handleTranscode)
	mux.HandleFunc("POST /api/transcode", s.handleTranscode)

	mux.HandleFunc("POST /api/start-extract", s.handleStartExtract)
	mux.HandleFunc("GET /api/run-status", s.handleRunStatus)
	mux.HandleFunc("GET /api/run-result", s.handleRunResult)

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	var h http.Handler = mux
	h = s.rateLimit(h)
	h = s.logRequests(h)
	h = requestID(h)
	h = cors(h)
	return h
}
