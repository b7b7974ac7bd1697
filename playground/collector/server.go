package collector

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	scout "github.com/scoutlabs/scout-go"
)

// Server is the demo collector: it accepts tracking envelopes and error
// reports from the agent, stores them and acknowledges with an empty 204
// so the fire-and-forget client has nothing to read.
type Server struct {
	store   *Store
	address string
	server  *http.Server

	registry           *prometheus.Registry
	envelopesReceived  prometheus.Counter
	eventsReceived     prometheus.Counter
	errorReportsStored prometheus.Counter
}

// NewServer creates a new Server.
func NewServer(store *Store, address string) *Server {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Server{
		store:    store,
		address:  address,
		registry: registry,
		envelopesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "scout_envelopes_received_total",
			Help: "Tracking envelopes accepted and stored.",
		}),
		eventsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "scout_events_received_total",
			Help: "Individual events contained in accepted envelopes.",
		}),
		errorReportsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "scout_error_reports_received_total",
			Help: "Error reports accepted and stored.",
		}),
	}
}

type errorReportPayload struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var envelope scout.Envelope
	if err := json.NewDecoder(request.Body).Decode(&envelope); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.store.ValidateEnvelope(envelope); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.InsertEnvelope(envelope, time.Now()); err != nil {
		log.Printf("database error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to store envelope")
		return
	}
	s.envelopesReceived.Inc()
	s.eventsReceived.Add(float64(len(envelope.Events)))
	w.WriteHeader(http.StatusNoContent) // success, no body
}

func (s *Server) handleErrors(w http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var report errorReportPayload
	if err := json.NewDecoder(request.Body).Decode(&report); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if report.Msg == "" {
		writeJSONError(w, http.StatusBadRequest, "msg cannot be empty")
		return
	}
	if _, err := s.store.InsertErrorReport(report.Msg, report.Stack, time.Now()); err != nil {
		log.Printf("database error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to store error report")
		return
	}
	s.errorReportsStored.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}

// apiNotFound keeps unknown API routes JSON, matching the rest of the API.
func (s *Server) apiNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, http.StatusNotFound, "not found")
}

// Routes builds the collector's mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/analytics", s.handleAnalytics)
	mux.HandleFunc("/api/v1/errors", s.handleErrors)
	mux.HandleFunc("/api/v1/", s.apiNotFound)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.address,
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownChannel := make(chan os.Signal, 1)
	signal.Notify(shutdownChannel, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("scout collector listening on %s", s.address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start:", err)
		}
	}()

	<-shutdownChannel
	log.Println("shutting down collector...")

	shutdownContext, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownContext); err != nil {
		return err
	}
	log.Println("collector exited")
	return nil
}
