// Package server exposes batch extraction over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/batch"
)

const maxBodyBytes = 1 << 20

// Runner runs a batch of URLs and returns the response body.
type Runner interface {
	Run(ctx context.Context, urls []string, preferAlt bool) string
}

// Server is the HTTP front end.
type Server struct {
	router chi.Router
	runner Runner
}

// New returns a server that hands requests to runner.
func New(runner Runner) *Server {
	s := &Server{runner: runner}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)

	r.Get("/health", s.handleHealth)
	r.Post("/extract", s.handleExtract)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	raw, preferAlt := parseRequest(r)
	body := s.runner.Run(r.Context(), batch.ParseURLs(raw), preferAlt)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

// parseRequest reads the URL list and prefer_alt flag from a JSON or form
// body. JSON defaults prefer_alt to true and forms default it to false.
// Malformed JSON counts as an empty request.
func parseRequest(r *http.Request) (string, bool) {
	if isJSON(r.Header.Get("Content-Type")) {
		var req struct {
			URLs      json.RawMessage `json:"urls"`
			PreferAlt json.RawMessage `json:"prefer_alt"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			log.Debug().Err(err).Msg("malformed json body")
			return "", true
		}
		preferAlt := true
		if req.PreferAlt != nil {
			preferAlt = truthy(req.PreferAlt)
		}
		return urlsField(req.URLs), preferAlt
	}
	switch r.FormValue("prefer_alt") {
	case "on", "true", "1":
		return r.FormValue("urls"), true
	}
	return r.FormValue("urls"), false
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || (strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}

// urlsField accepts a newline-separated string or a list of strings.
func urlsField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "\n")
	}
	return ""
}

// truthy applies the usual JSON truthiness: false, null, 0, "" and empty
// containers are false.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

// RequestLogger logs each request through zerolog.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
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
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
