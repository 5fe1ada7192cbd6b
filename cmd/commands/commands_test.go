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

package commands

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phuonguno98/chunksite/internal/config"
)

func TestBuildServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.MetricsEnabled = true
	cfg.RateLimitRPS = 100

	srv, err := buildServer(cfg, logger)
	if err != nil {
		t.Fatalf("buildServer() error = %v", err)
	}

	routes := strings.Join(srv.Routes(), " ")
	for _, want := range []string{"/index.html", "/", metricsPath} {
		if !strings.Contains(routes, want) {
			t.Errorf("routes %q missing %s", routes, want)
		}
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<html") {
		t.Fatalf("GET / status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, metricsPath, http.NoBody))
	if !strings.Contains(w.Body.String(), "chunksite_chunks_sent_total") {
		t.Error("metrics output missing chunksite_chunks_sent_total")
	}
}

func TestBuildServer_RouteLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.MaxRoutes = 1

	if _, err := buildServer(cfg, logger); err == nil {
		t.Error("buildServer() expected registration error")
	}
}

func TestInspectCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inspect", "--chunk-size", "100", "--env-file", ""})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("inspect error = %v", err)
	}

	for _, want := range []string{"/index.html (/)", "/css/style.css", "Chunk size:        100 B"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("inspect output missing %q:\n%s", want, out.String())
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "chunksite ") {
		t.Errorf("version output = %q", out.String())
	}
}
