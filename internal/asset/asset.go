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

// Package asset holds the compiled-in website files and the lookup rules used
// to serve them.
//
// A Table is built once at startup and is read-only afterwards, so it can be
// shared by every request handler without locking.
package asset

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultIndex is the file name additionally served at the root path.
const DefaultIndex = "index.html"

var (
	// ErrDuplicatePath is returned when two assets share the same path.
	ErrDuplicatePath = errors.New("duplicate asset path")
	// ErrNoIndex is returned when no asset matches the index file name.
	ErrNoIndex = errors.New("index asset not found")
	// ErrInvalidPath is returned for paths that are not absolute URL paths.
	ErrInvalidPath = errors.New("invalid asset path")
)

// Asset is a single embedded file.
type Asset struct {
	Path        string // Request path, e.g. /index.html
	ContentType string // MIME type sent with every response
	Data        []byte // File contents, never modified after construction
}

// Len returns the size of the asset in bytes.
func (a *Asset) Len() int {
	return len(a.Data)
}

// Table is the ordered set of embedded assets.
type Table struct {
	assets []*Asset
	byPath map[string]*Asset
	index  *Asset
}

// NewTable validates the assets and builds a Table.
// index is the bare file name of the document served at "/" (e.g. "index.html").
func NewTable(index string, assets ...Asset) (*Table, error) {
	if index == "" {
		index = DefaultIndex
	}
	indexPath := "/" + strings.TrimPrefix(index, "/")

	t := &Table{
		assets: make([]*Asset, 0, len(assets)),
		byPath: make(map[string]*Asset, len(assets)),
	}

	for i := range assets {
		a := assets[i]
		if !strings.HasPrefix(a.Path, "/") || a.Path == "/" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, a.Path)
		}
		if _, exists := t.byPath[a.Path]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, a.Path)
		}
		if a.ContentType == "" {
			a.ContentType = ContentTypeFor(a.Path)
		}

		stored := &a
		t.assets = append(t.assets, stored)
		t.byPath[a.Path] = stored
		if a.Path == indexPath {
			t.index = stored
		}
	}

	if t.index == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoIndex, indexPath)
	}

	return t, nil
}

// Lookup returns the asset served at path. The root path resolves to the
// index asset. Unknown paths report false.
func (t *Table) Lookup(path string) (*Asset, bool) {
	if path == "/" {
		return t.index, true
	}
	a, ok := t.byPath[path]
	return a, ok
}

// Index returns the asset served at "/".
func (t *Table) Index() *Asset {
	return t.index
}

// Assets returns the assets in table order.
func (t *Table) Assets() []*Asset {
	out := make([]*Asset, len(t.assets))
	copy(out, t.assets)
	return out
}

// Len returns the number of assets.
func (t *Table) Len() int {
	return len(t.assets)
}

// TotalBytes returns the combined size of all assets.
func (t *Table) TotalBytes() int {
	total := 0
	for _, a := range t.assets {
		total += a.Len()
	}
	return total
}
