/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/phuonguno98/chunksite/internal/metrics"
	"github.com/phuonguno98/chunksite/internal/ratelimit"
)

const (
	// DefaultMaxRoutes mirrors the handler table size of small embedded servers.
	DefaultMaxRoutes = 32

	requestIDHeader = "X-Request-Id"
)

var (
	// ErrDuplicateRoute is returned when a path is registered twice.
	ErrDuplicateRoute = errors.New("route already registered")
	// ErrRouteLimit is returned when the handler table is full.
	ErrRouteLimit = errors.New("route limit reached")
	// ErrInvalidRoute is returned for paths the router cannot match literally.
	ErrInvalidRoute = errors.New("invalid route path")
)

// Options configures a Server.
type Options struct {
	MaxRoutes int                // Handler table size (0 = DefaultMaxRoutes)
	Metrics   *metrics.Metrics   // Optional request metrics
	Limiter   *ratelimit.Limiter // Optional rate limiter
}

// Server is the HTTP front end that asset handlers are registered with.
type Server struct {
	router    *mux.Router
	logger    *slog.Logger
	metrics   *metrics.Metrics
	maxRoutes int

	mu     sync.Mutex
	routes []string
	seen   map[string]bool
}

// NewServer creates a server with an empty route table.
func NewServer(logger *slog.Logger, opts Options) *Server {
	maxRoutes := opts.MaxRoutes
	if maxRoutes <= 0 {
		maxRoutes = DefaultMaxRoutes
	}

	s := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		metrics:   opts.Metrics,
		maxRoutes: maxRoutes,
		seen:      make(map[string]bool),
	}

	s.setupMiddleware(opts.Limiter)

	return s
}

func (s *Server) setupMiddleware(limiter *ratelimit.Limiter) {
	s.router.Use(requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	if limiter != nil {
		s.router.Use(func(next http.Handler) http.Handler {
			return limiter.Middleware(s.metrics, next)
		})
	}
}

// Handle registers h for GET and HEAD requests on path.
// It fails for duplicate paths and once the route table is full.
func (s *Server) Handle(path string, h http.Handler) error {
	if !strings.HasPrefix(path, "/") || strings.ContainsAny(path, "{}") {
		return fmt.Errorf("%w: %q", ErrInvalidRoute, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[path] {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, path)
	}
	if len(s.routes) >= s.maxRoutes {
		return fmt.Errorf("%w: %d handlers", ErrRouteLimit, s.maxRoutes)
	}

	s.router.Handle(path, h).Methods(http.MethodGet, http.MethodHead)
	s.routes = append(s.routes, path)
	s.seen[path] = true

	return nil
}

// Routes returns the registered paths in registration order.
func (s *Server) Routes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.routes))
	copy(out, s.routes)
	return out
}

// requestIDMiddleware tags each request with an ID for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		r.Header.Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"request_id", r.Header.Get(requestIDHeader),
		)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
