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

// Package website wires the embedded site into an HTTP server.
package website

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/phuonguno98/chunksite/internal/asset"
	"github.com/phuonguno98/chunksite/internal/chunk"
	"github.com/phuonguno98/chunksite/internal/route"
	"github.com/phuonguno98/chunksite/web"
)

// Options configures RegisterWebsite.
type Options struct {
	FS        fs.FS          // Site files (nil = embedded web assets)
	IndexName string         // Document also served at "/" (empty = asset.DefaultIndex)
	ChunkSize int            // Bytes per chunk (0 = chunk.DefaultSize)
	Observer  chunk.Observer // Optional transfer observer
	Logger    *slog.Logger   // Optional logger (nil = slog.Default())
}

// LoadTable builds the asset table for opts without registering anything.
func LoadTable(opts Options) (*asset.Table, error) {
	fsys := opts.FS
	if fsys == nil {
		site, err := web.Site()
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded site: %w", err)
		}
		fsys = site
	}

	table, err := asset.FromFS(fsys, opts.IndexName)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	return table, nil
}

// RegisterWebsite registers every embedded file with srv, plus "/" for the
// index document. It must be called before srv accepts traffic.
func RegisterWebsite(srv route.Server, opts Options) (*asset.Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	size := opts.ChunkSize
	if size == 0 {
		size = chunk.DefaultSize
	}

	var senderOpts []chunk.Option
	if opts.Observer != nil {
		senderOpts = append(senderOpts, chunk.WithObserver(opts.Observer))
	}
	sender, err := chunk.NewSender(size, senderOpts...)
	if err != nil {
		return nil, err
	}

	table, err := LoadTable(opts)
	if err != nil {
		return nil, err
	}

	if err := route.RegisterAll(srv, table, sender, logger); err != nil {
		return nil, err
	}

	logger.Info("Website registered",
		"assets", table.Len(),
		"bytes", table.TotalBytes(),
		"index", table.Index().Path,
		"chunk_size", size,
	)

	return table, nil
}
