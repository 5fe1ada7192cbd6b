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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observer(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ChunkSent("/index.html", 256)
	m.ChunkSent("/index.html", 256)
	m.ChunkSent("/index.html", 88)
	m.TransferFailed("/style.css", nil)

	if got := testutil.ToFloat64(m.ChunksSent.WithLabelValues("/index.html")); got != 3 {
		t.Errorf("chunks sent = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.BytesSent.WithLabelValues("/index.html")); got != 600 {
		t.Errorf("bytes sent = %v, want 600", got)
	}
	if got := testutil.ToFloat64(m.TransferFailures.WithLabelValues("/style.css")); got != 1 {
		t.Errorf("transfer failures = %v, want 1", got)
	}
}

func TestMetrics_Middleware(t *testing.T) {
	m := New(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/style.css", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/style.css", http.NoBody)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/style.css", http.MethodGet, "200")); got != 2 {
		t.Errorf("requests total = %v, want 2", got)
	}
}

func TestStatusRecorder_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, statusCode: http.StatusOK}

	sr.WriteHeader(http.StatusTeapot)
	sr.Flush()

	if sr.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", sr.statusCode, http.StatusTeapot)
	}
	if !rec.Flushed {
		t.Error("Flush() was not forwarded")
	}
}
