package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jukebot/internal/chat"
	"jukebot/internal/core"
	"jukebot/internal/display"
)

// ChatHandler is the inbound boundary: one chat event in, at most one reply
// out. The dispatcher implements it.
type ChatHandler interface {
	Handle(ctx context.Context, event *chat.Event) *chat.Reply
}

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	store   core.Store
	handler ChatHandler
	topN    int
	metrics *Metrics
}

type Metrics struct {
	EventsTotal     *prometheus.CounterVec
	SearchesTotal   *prometheus.CounterVec
	AddsTotal       prometheus.Counter
	DuplicatesTotal prometheus.Counter
	ExpiredTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	HandleTime      *prometheus.HistogramVec
	QueueSize       prometheus.Gauge
	DisplayClients  prometheus.Gauge
}

func NewServer(
	config *core.ServerConfig,
	store core.Store,
	handler ChatHandler,
	hub *display.Hub,
	topN int,
	logger *zap.Logger,
) *Server {
	metrics := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebot_chat_events_total",
				Help: "Total number of chat events processed",
			},
			[]string{"type", "status"},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebot_searches_total",
				Help: "Total number of track searches",
			},
			[]string{"outcome"},
		),
		AddsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jukebot_queue_adds_total",
				Help: "Total number of tracks added to the queue",
			},
		),
		DuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jukebot_duplicates_total",
				Help: "Total number of duplicate confirmations rejected",
			},
		),
		ExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jukebot_confirms_expired_total",
				Help: "Total number of stale confirmation attempts",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebot_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		HandleTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jukebot_handle_duration_seconds",
				Help:    "Time spent handling chat events",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		QueueSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "jukebot_queue_size",
				Help: "Current number of pending tracks",
			},
		),
		DisplayClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "jukebot_display_clients",
				Help: "Number of connected display clients",
			},
		),
	}

	prometheus.MustRegister(
		metrics.EventsTotal,
		metrics.SearchesTotal,
		metrics.AddsTotal,
		metrics.DuplicatesTotal,
		metrics.ExpiredTotal,
		metrics.ErrorsTotal,
		metrics.HandleTime,
		metrics.QueueSize,
		metrics.DisplayClients,
	)

	s := &Server{
		config:  config,
		logger:  logger,
		store:   store,
		handler: handler,
		topN:    topN,
		metrics: metrics,
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	router.Get("/healthz", s.handleHealthz)
	router.Get("/readyz", s.handleReadyz)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/stats", s.handleStats)
	router.Post("/chat/events", s.handleChatEvent)
	router.Get("/ws", hub.ServeWS)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "jukebot",
	})
}

// handleReadyz reports ready only when the store answers a ping.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.metrics.ErrorsTotal.WithLabelValues("store", "ping").Inc()
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": "jukebot",
	})
}

type statsResponse struct {
	TotalPlayed int              `json:"total_played"`
	TopSongs    []core.StatEntry `json:"top_songs"`
	TopArtists  []core.StatEntry `json:"top_artists"`
}

// handleStats aggregates the full play history. An optional ?n= overrides the
// configured list length.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n := s.topN
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "n must be a positive integer",
			})
			return
		}
		n = parsed
	}

	records, err := s.store.ListHistory(r.Context())
	if err != nil {
		s.logger.Error("Failed to load play history", zap.Error(err))
		s.metrics.ErrorsTotal.WithLabelValues("store", "history").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load history",
		})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalPlayed: len(records),
		TopSongs:    core.TopSongs(records, n),
		TopArtists:  core.TopArtists(records, n),
	})
}

// handleChatEvent decodes one chat event, runs it through the dispatcher and
// returns the reply. A nil reply maps to 204.
func (s *Server) handleChatEvent(w http.ResponseWriter, r *http.Request) {
	var event chat.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.metrics.EventsTotal.WithLabelValues("unknown", "malformed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "malformed event",
		})
		return
	}
	if event.UserID == "" {
		s.metrics.EventsTotal.WithLabelValues(event.Type.String(), "malformed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "user_id is required",
		})
		return
	}

	start := time.Now()
	reply := s.handler.Handle(r.Context(), &event)
	s.metrics.HandleTime.WithLabelValues(event.Type.String()).
		Observe(time.Since(start).Seconds())

	if reply == nil {
		s.metrics.EventsTotal.WithLabelValues(event.Type.String(), "ignored").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.metrics.EventsTotal.WithLabelValues(event.Type.String(), "handled").Inc()
	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
