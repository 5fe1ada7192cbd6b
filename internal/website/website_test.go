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

package website

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/phuonguno98/chunksite/internal/asset"
	"github.com/phuonguno98/chunksite/internal/chunk"
	"github.com/phuonguno98/chunksite/internal/metrics"
	"github.com/phuonguno98/chunksite/internal/route"
	"github.com/phuonguno98/chunksite/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSite() fstest.MapFS {
	return fstest.MapFS{
		"index.html":    {Data: bytes.Repeat([]byte("<p>x</p>"), 75)}, // 600 bytes
		"css/style.css": {Data: bytes.Repeat([]byte("a"), 100)},
		"js/app.js":     {Data: []byte("console.log('ready');")},
		"empty.txt":     {Data: nil},
	}
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp, body
}

func TestRegisterWebsite_EndToEnd(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	srv := server.NewServer(testLogger(), server.Options{Metrics: m})

	site := testSite()
	table, err := RegisterWebsite(srv, Options{
		FS:       site,
		Observer: m,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("RegisterWebsite() error = %v", err)
	}
	if got := len(srv.Routes()); got != table.Len()+1 {
		t.Errorf("routes = %d, want %d", got, table.Len()+1)
	}

	ts := httptest.NewServer(srv)
	defer ts.Close()

	tests := []struct {
		path        string
		file        string
		contentType string
	}{
		{"/", "index.html", "text/html"},
		{"/index.html", "index.html", "text/html"},
		{"/css/style.css", "css/style.css", "text/css"},
		{"/js/app.js", "js/app.js", "application/javascript"},
		{"/empty.txt", "empty.txt", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !bytes.Equal(body, site[tt.file].Data) {
				t.Errorf("body = %d bytes, want %d", len(body), len(site[tt.file].Data))
			}
		})
	}

	// "/" and "/index.html" each streamed 600 bytes in 3 chunks.
	if got := testutil.ToFloat64(m.ChunksSent.WithLabelValues("/index.html")); got != 6 {
		t.Errorf("index chunks = %v, want 6", got)
	}
	if got := testutil.ToFloat64(m.BytesSent.WithLabelValues("/index.html")); got != 1200 {
		t.Errorf("index bytes = %v, want 1200", got)
	}
}

func TestRegisterWebsite_ChunkedTransfer(t *testing.T) {
	srv := server.NewServer(testLogger(), server.Options{})
	if _, err := RegisterWebsite(srv, Options{FS: testSite(), Logger: testLogger()}); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, body := get(t, ts.URL+"/")
	if len(resp.TransferEncoding) != 1 || resp.TransferEncoding[0] != "chunked" {
		t.Errorf("TransferEncoding = %v, want [chunked]", resp.TransferEncoding)
	}
	if len(body) != 600 {
		t.Errorf("body length = %d, want 600", len(body))
	}

	resp, body = get(t, ts.URL+"/missing.css")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing asset status = %d, want %d (body %q)", resp.StatusCode, http.StatusNotFound, body)
	}
}

func TestRegisterWebsite_Embedded(t *testing.T) {
	srv := server.NewServer(testLogger(), server.Options{})

	table, err := RegisterWebsite(srv, Options{Logger: testLogger()})
	if err != nil {
		t.Fatalf("RegisterWebsite() error = %v", err)
	}

	if table.Index().Path != "/index.html" {
		t.Errorf("index = %s, want /index.html", table.Index().Path)
	}
	for _, path := range []string{"/", "/index.html", "/css/style.css", "/js/app.js", "/favicon.svg"} {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, w.Code)
		}
	}
}

func TestRegisterWebsite_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		srvOpts server.Options
		wantErr error
	}{
		{
			name:    "Invalid chunk size",
			opts:    Options{FS: testSite(), ChunkSize: -1},
			wantErr: chunk.ErrInvalidChunkSize,
		},
		{
			name:    "Missing index",
			opts:    Options{FS: testSite(), IndexName: "home.html"},
			wantErr: asset.ErrNoIndex,
		},
		{
			name:    "Route table too small",
			opts:    Options{FS: testSite()},
			srvOpts: server.Options{MaxRoutes: 2},
			wantErr: server.ErrRouteLimit,
		},
		{
			name:    "Root alias does not fit",
			opts:    Options{FS: testSite()},
			srvOpts: server.Options{MaxRoutes: 4},
			wantErr: server.ErrRouteLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = testLogger()
			srv := server.NewServer(testLogger(), tt.srvOpts)

			_, err := RegisterWebsite(srv, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RegisterWebsite() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterWebsite_DuplicateRegistration(t *testing.T) {
	srv := server.NewServer(testLogger(), server.Options{})
	if _, err := RegisterWebsite(srv, Options{FS: testSite(), Logger: testLogger()}); err != nil {
		t.Fatal(err)
	}

	_, err := RegisterWebsite(srv, Options{FS: testSite(), Logger: testLogger()})
	var regErr *route.RegistrationError
	if !errors.As(err, &regErr) || !errors.Is(err, server.ErrDuplicateRoute) {
		t.Fatalf("second RegisterWebsite() error = %v, want duplicate route", err)
	}
	if regErr.Path != "/css/style.css" {
		t.Errorf("first rejected path = %s, want /css/style.css", regErr.Path)
	}
}
