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

// Package metrics exposes Prometheus collectors for the asset server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const unmatchedRoute = "other"

// Metrics bundles the collectors used by the server and the chunk sender.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
	ChunksSent         *prometheus.CounterVec
	BytesSent          *prometheus.CounterVec
	TransferFailures   *prometheus.CounterVec
	RateLimitDropped   prometheus.Counter
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chunksite_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chunksite_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		ChunksSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chunksite_chunks_sent_total",
			Help: "Total number of asset chunks written to clients.",
		}, []string{"path"}),
		BytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chunksite_bytes_sent_total",
			Help: "Total number of asset bytes written to clients.",
		}, []string{"path"}),
		TransferFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chunksite_transfer_failures_total",
			Help: "Total number of asset transfers aborted by a failed write.",
		}, []string{"path"}),
		RateLimitDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunksite_ratelimit_dropped_total",
			Help: "Total number of requests dropped by the rate limiter.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.ChunksSent,
		m.BytesSent,
		m.TransferFailures,
		m.RateLimitDropped,
	)

	return m
}

// ChunkSent implements chunk.Observer.
func (m *Metrics) ChunkSent(path string, n int) {
	m.ChunksSent.WithLabelValues(path).Inc()
	m.BytesSent.WithLabelValues(path).Add(float64(n))
}

// TransferFailed implements chunk.Observer.
func (m *Metrics) TransferFailed(path string, _ error) {
	m.TransferFailures.WithLabelValues(path).Inc()
}

// Middleware records request counts and durations per registered route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := routeTemplate(r)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

// routeTemplate keeps label cardinality bounded by the registered routes.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Flush keeps chunked responses streaming through the recorder.
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
