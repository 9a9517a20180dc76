// Package batch expands file and directory arguments, aggregates per-file
// decode results and renders them as text, JSON, CSV or YAML.
package batch

import (
	"fmt"
	"io"
	"os"

	"github.com/MeKo-Tech/pobar/internal/engine"
)

// FileResult is the outcome of decoding one file.
type FileResult struct {
	Path     string
	Barcodes []engine.Barcode
	Err      error
}

// Result collects every file decoded in one run.
type Result struct {
	Files []FileResult
	Stats Stats
}

// Add records r and updates the totals.
func (r *Result) Add(fr FileResult) {
	r.Files = append(r.Files, fr)
	r.Stats.Add(fr)
}

// FormatResults renders the result in format: json, csv or yaml.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults writes the formatted result to outputFile, or to w when outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err = io.WriteString(w, output)
	return err
}
