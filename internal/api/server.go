// Package api serves the chat, game session, mood and dashboard records
// over HTTP, with a WebSocket stream of new chat messages.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/san-kum/mindwave/internal/config"
)

type ctxKey struct{}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

// requireUser takes the caller from the X-User-ID header.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-ID")
		if id == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing X-User-ID header"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/ws/chat" {
				// the upgrader needs the raw writer
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("http", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
		})
	}
}

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog(h.Logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/ws/chat", requireUser(http.HandlerFunc(h.ServeWS))).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(requireUser)
	v1.HandleFunc("/chat/sessions", h.OpenSession).Methods(http.MethodPost)
	v1.HandleFunc("/chat/sessions/{id}/messages", h.PostMessage).Methods(http.MethodPost)
	v1.HandleFunc("/chat/sessions/{id}/messages", h.ListMessages).Methods(http.MethodGet)
	v1.HandleFunc("/chat/sessions/{id}/end", h.EndSession).Methods(http.MethodPost)
	v1.HandleFunc("/games/sessions", h.SaveGameSession).Methods(http.MethodPost)
	v1.HandleFunc("/games/sessions", h.ListGameSessions).Methods(http.MethodGet)
	v1.HandleFunc("/moods", h.SaveMood).Methods(http.MethodPost)
	v1.HandleFunc("/moods", h.ListMoods).Methods(http.MethodGet)
	v1.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)

	return r
}

type Server struct {
	cfg     config.ServerConfig
	handler *Handler
	http    *http.Server
}

func NewServer(cfg config.ServerConfig, h *Handler) *Server {
	if h.Logger == nil {
		h.Logger = log.Default()
	}
	return &Server{
		cfg:     cfg,
		handler: h,
		http: &http.Server{
			Handler:           cors(NewRouter(h)),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler { return s.http.Handler }

// Serve runs the hub and the HTTP server on ln until ctx is done, then
// shuts down within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.handler.Hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.handler.Logger.Info("listening", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stopHub()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.handler.Logger.Info("server stopped")
	return nil
}

// ListenAndServe is Serve on the configured address.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
