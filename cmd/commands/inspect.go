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
	"fmt"
	"os"

	"github.com/phuonguno98/chunksite/internal/sysinfo"
	"github.com/phuonguno98/chunksite/internal/website"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List embedded assets and their memory footprint",
	Long: `List every embedded asset with its content type, size and the number of
chunks it is sent in, followed by a footprint summary for this host.

Examples:
  # Inspect with the default 256-byte chunks
  chunksite inspect

  # See how a different chunk size splits the assets
  chunksite inspect --chunk-size 1024`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addSiteFlags(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applySiteFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	table, err := website.LoadTable(website.Options{IndexName: cfg.IndexName})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, sysinfo.FormatAssetTable(table, cfg.ChunkSize))

	memory, err := sysinfo.ReadMemory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading host memory: %v\n", err)
	}
	fmt.Fprint(out, sysinfo.FormatFootprint(sysinfo.ComputeFootprint(table, cfg.ChunkSize, memory), memory))
	fmt.Fprintln(out)

	return nil
}
