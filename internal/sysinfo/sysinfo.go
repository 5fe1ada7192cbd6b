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

// Package sysinfo reports host resources relevant to serving the embedded site.
package sysinfo

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/phuonguno98/chunksite/internal/asset"
	"github.com/phuonguno98/chunksite/internal/chunk"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// Dependency injection points for testing
var (
	virtualMemory = mem.VirtualMemory
	netInterfaces = psnet.Interfaces
)

// Memory is a snapshot of host memory.
type Memory struct {
	Total       uint64
	Available   uint64
	UsedPercent float64
}

// Footprint describes what serving the asset table costs.
type Footprint struct {
	Assets         int
	EmbeddedBytes  uint64
	ChunkSize      int
	PerRequestPeak uint64  // Largest single write buffer handed to the transport
	EmbeddedShare  float64 // Embedded bytes as a percentage of total memory
}

// ReadMemory returns the current host memory usage.
func ReadMemory() (Memory, error) {
	vmStat, err := virtualMemory()
	if err != nil {
		return Memory{}, fmt.Errorf("failed to get memory stats: %w", err)
	}
	if vmStat.Total == 0 {
		return Memory{}, fmt.Errorf("total memory is zero")
	}

	return Memory{
		Total:       vmStat.Total,
		Available:   vmStat.Available,
		UsedPercent: vmStat.UsedPercent,
	}, nil
}

// ComputeFootprint combines the asset table with a memory snapshot.
func ComputeFootprint(table *asset.Table, chunkSize int, memory Memory) Footprint {
	fp := Footprint{
		Assets:        table.Len(),
		EmbeddedBytes: uint64(table.TotalBytes()),
		ChunkSize:     chunkSize,
	}

	for _, a := range table.Assets() {
		fp.PerRequestPeak = max(fp.PerRequestPeak, uint64(min(a.Len(), chunkSize)))
	}

	if memory.Total > 0 {
		fp.EmbeddedShare = float64(fp.EmbeddedBytes) / float64(memory.Total) * 100.0
	}

	return fp
}

// ListAddresses returns the IPv4 addresses of interfaces that are up,
// loopback excluded, sorted.
func ListAddresses() ([]string, error) {
	interfaces, err := netInterfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	addresses := make([]string, 0)
	for _, iface := range interfaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		for _, addr := range iface.Addrs {
			ip, _, err := net.ParseCIDR(addr.Addr)
			if err != nil || ip.To4() == nil {
				continue
			}
			addresses = append(addresses, ip.String())
		}
	}

	sort.Strings(addresses)
	return addresses, nil
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

// FormatAssetTable formats the asset table as a text table.
func FormatAssetTable(table *asset.Table, chunkSize int) string {
	var sb strings.Builder

	sb.WriteString("\nEmbedded Assets:\n")
	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-36s %-24s %10s %7s\n", "PATH", "CONTENT TYPE", "SIZE", "CHUNKS"))
	sb.WriteString(strings.Repeat("-", 80))
	sb.WriteString("\n")

	for _, a := range table.Assets() {
		path := a.Path
		if a == table.Index() {
			path += " (/)"
		}
		sb.WriteString(fmt.Sprintf("%-36s %-24s %10s %7d\n",
			truncate(path, 36),
			truncate(a.ContentType, 24),
			formatBytes(uint64(a.Len())),
			chunk.Count(a.Len(), chunkSize),
		))
	}

	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")

	return sb.String()
}

// FormatFootprint formats a footprint summary.
func FormatFootprint(fp Footprint, memory Memory) string {
	var sb strings.Builder

	sb.WriteString("\nFootprint:\n")
	sb.WriteString(fmt.Sprintf("  Assets:            %d\n", fp.Assets))
	sb.WriteString(fmt.Sprintf("  Embedded size:     %s\n", formatBytes(fp.EmbeddedBytes)))
	sb.WriteString(fmt.Sprintf("  Chunk size:        %d B\n", fp.ChunkSize))
	sb.WriteString(fmt.Sprintf("  Per-request peak:  %s\n", formatBytes(fp.PerRequestPeak)))
	if memory.Total > 0 {
		sb.WriteString(fmt.Sprintf("  Host memory:       %s total, %s available\n",
			formatBytes(memory.Total), formatBytes(memory.Available)))
		sb.WriteString(fmt.Sprintf("  Embedded share:    %.4f%%\n", fp.EmbeddedShare))
	}

	return sb.String()
}

// formatBytes converts bytes to human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
