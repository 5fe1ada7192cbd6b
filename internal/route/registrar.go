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

// Package route binds embedded assets to HTTP handlers.
package route

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phuonguno98/chunksite/internal/asset"
	"github.com/phuonguno98/chunksite/internal/chunk"
)

// RootPath is the alias registered for the index asset.
const RootPath = "/"

// Server is the handler registration surface of an HTTP server.
type Server interface {
	Handle(path string, h http.Handler) error
}

// RegistrationError reports a route the server refused to accept.
type RegistrationError struct {
	Path string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register %s: %v", e.Path, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Handler serves a single asset.
type Handler struct {
	asset  *asset.Asset
	sender *chunk.Sender
	logger *slog.Logger
}

// NewHandler creates a Handler bound to a.
func NewHandler(a *asset.Asset, sender *chunk.Sender, logger *slog.Logger) *Handler {
	return &Handler{asset: a, sender: sender, logger: logger}
}

// Asset returns the bound asset.
func (h *Handler) Asset() *asset.Asset {
	return h.asset
}

// ServeHTTP implements http.Handler.
// A failed transfer aborts the response; the server drops the connection so
// the client never mistakes a truncated body for a complete one.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.sender.Send(w, h.asset); err != nil {
		h.logger.Warn("Asset transfer aborted",
			"path", r.URL.Path,
			"asset", h.asset.Path,
			"error", err,
		)
		panic(http.ErrAbortHandler)
	}
}

// RegisterAll registers one handler per asset plus the root alias for the
// index asset. The first rejected registration stops the walk and is returned.
func RegisterAll(srv Server, table *asset.Table, sender *chunk.Sender, logger *slog.Logger) error {
	var index *Handler

	for _, a := range table.Assets() {
		h := NewHandler(a, sender, logger)
		if err := srv.Handle(a.Path, h); err != nil {
			return &RegistrationError{Path: a.Path, Err: err}
		}
		if a == table.Index() {
			index = h
		}
		logger.Debug("Registered asset",
			"path", a.Path,
			"content_type", a.ContentType,
			"bytes", a.Len(),
			"chunks", chunk.Count(a.Len(), sender.Size()),
		)
	}

	if index == nil {
		return &RegistrationError{Path: RootPath, Err: asset.ErrNoIndex}
	}
	if err := srv.Handle(RootPath, index); err != nil {
		return &RegistrationError{Path: RootPath, Err: err}
	}
	logger.Debug("Registered root alias", "path", RootPath, "asset", index.asset.Path)

	return nil
}
