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

// Package chunk streams assets to HTTP clients in fixed-size pieces.
//
// Only one chunk of an asset is handed to the transport at a time, so the
// response buffer never needs to hold more than the configured chunk size.
package chunk

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/phuonguno98/chunksite/internal/asset"
)

// DefaultSize is the chunk size used when none is configured.
// It matches the default receive buffer of small embedded HTTP servers.
const DefaultSize = 256

// ErrInvalidChunkSize is returned for chunk sizes below 1.
var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Observer is notified about transfer progress.
type Observer interface {
	ChunkSent(path string, n int)
	TransferFailed(path string, err error)
}

// TransferError describes a write that failed mid-stream.
type TransferError struct {
	Path      string // Asset being sent
	Chunk     int    // 1-based index of the failed chunk
	Delivered int    // Full chunks written before the failure
	Err       error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %s aborted at chunk %d (%d delivered): %v",
		e.Path, e.Chunk, e.Delivered, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Sender writes assets to response streams chunk by chunk.
type Sender struct {
	size     int
	observer Observer
}

// Option configures a Sender.
type Option func(*Sender)

// WithObserver registers an observer for chunk and failure events.
func WithObserver(o Observer) Option {
	return func(s *Sender) {
		s.observer = o
	}
}

// NewSender creates a Sender with the given chunk size.
func NewSender(size int, opts ...Option) (*Sender, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, size)
	}

	s := &Sender{size: size}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Size returns the configured chunk size.
func (s *Sender) Size() int {
	return s.size
}

// Send writes the full contents of a to w.
//
// The Content-Type header is set before the first chunk. Each chunk is
// flushed on its own when w supports http.Flusher. The first failed or short
// write aborts the transfer and is returned as a *TransferError; nothing is
// retried.
func (s *Sender) Send(w http.ResponseWriter, a *asset.Asset) error {
	h := w.Header()
	h.Set("Content-Type", a.ContentType)
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	offset, remaining := 0, a.Len()
	chunks := 0
	for remaining > 0 {
		n := min(s.size, remaining)

		written, err := w.Write(a.Data[offset : offset+n])
		if err == nil && written < n {
			err = io.ErrShortWrite
		}
		if err != nil {
			tErr := &TransferError{Path: a.Path, Chunk: chunks + 1, Delivered: chunks, Err: err}
			if s.observer != nil {
				s.observer.TransferFailed(a.Path, tErr)
			}
			return tErr
		}
		if flusher != nil {
			flusher.Flush()
		}

		offset += n
		remaining -= n
		chunks++
		if s.observer != nil {
			s.observer.ChunkSent(a.Path, n)
		}
	}

	return nil
}

// Count returns the number of chunks needed for length bytes.
func Count(length, size int) int {
	if length <= 0 || size <= 0 {
		return 0
	}
	return (length + size - 1) / size
}
