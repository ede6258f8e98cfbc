package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server serves /healthz and, in webhook mode, the Telegram webhook path.
type Server struct {
	Addr string
	Log  *slog.Logger

	mux *http.ServeMux
}

// New registers /healthz; stats is rendered into its JSON body.
func New(addr string, stats func() any, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{Addr: addr, Log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		body := map[string]any{"status": "ok"}
		if stats != nil {
			body["stats"] = stats()
		}
		_ = json.NewEncoder(w).Encode(body)
	})
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("telegram relay bot"))
	})
	return s
}

func (s *Server) Handle(pattern string, h http.Handler) { s.mux.Handle(pattern, h) }

func (s *Server) Handler() http.Handler { return s.mux }

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Log.Info("http server listening", "addr", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		return err
	}
	s.Log.Info("http server stopped")
	return nil
}
