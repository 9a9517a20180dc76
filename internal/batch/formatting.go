package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/pobar/internal/engine"
)

// fileRecord is the serialized form of a FileResult.
type fileRecord struct {
	File     string           `json:"file" yaml:"file"`
	Barcodes []engine.Barcode `json:"barcodes" yaml:"barcodes"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
}

type document struct {
	Files []fileRecord `json:"files" yaml:"files"`
	Stats Stats        `json:"stats" yaml:"stats"`
}

func formatBatchResults(r *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(r)
	case "csv":
		return formatCSV(r)
	case "yaml":
		return formatYAML(r)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func toDocument(r *Result) document {
	doc := document{Files: make([]fileRecord, 0, len(r.Files)), Stats: r.Stats}
	for _, f := range r.Files {
		rec := fileRecord{File: f.Path, Barcodes: f.Barcodes}
		if rec.Barcodes == nil {
			rec.Barcodes = []engine.Barcode{}
		}
		if f.Err != nil {
			rec.Error = f.Err.Error()
		}
		doc.Files = append(doc.Files, rec)
	}
	return doc
}

func formatJSON(r *Result) (string, error) {
	bts, err := json.MarshalIndent(toDocument(r), "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

func formatYAML(r *Result) (string, error) {
	bts, err := yaml.Marshal(toDocument(r))
	return string(bts), err
}

// formatCSV writes one row per barcode and one empty row for files without any.
func formatCSV(r *Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	rows := [][]string{{"file", "index", "format", "text", "x1", "y1", "x2", "y2", "x3", "y3", "x4", "y4", "error"}}

	for _, f := range r.Files {
		errText := ""
		if f.Err != nil {
			errText = f.Err.Error()
		}
		if len(f.Barcodes) == 0 {
			rows = append(rows, []string{f.Path, "", "", "", "", "", "", "", "", "", "", "", errText})
			continue
		}
		for i, b := range f.Barcodes {
			row := []string{f.Path, strconv.Itoa(i + 1), b.Format, b.Text}
			for _, p := range b.Points {
				row = append(row, strconv.Itoa(p.X), strconv.Itoa(p.Y))
			}
			rows = append(rows, append(row, errText))
		}
	}

	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return output.String(), nil
}

// WriteDetail prints the barcodes of one file in the console layout, followed
// by a blank line. Null and empty results both print "No barcode found.".
func WriteDetail(w io.Writer, barcodes []engine.Barcode) {
	if len(barcodes) == 0 {
		_, _ = fmt.Fprintln(w, "No barcode found.")
	} else {
		_, _ = fmt.Fprintf(w, "Decoded %d barcodes\n", len(barcodes))
		for i, b := range barcodes {
			_, _ = fmt.Fprintf(w, "Result %d\n", i+1)
			_, _ = fmt.Fprintf(w, "Barcode Format: %s\n", b.Format)
			_, _ = fmt.Fprintf(w, "Barcode Text: %s\n", b.Text)
			for k, p := range b.Points {
				_, _ = fmt.Fprintf(w, "Point %d: (%d, %d)\n", k+1, p.X, p.Y)
			}
		}
	}
	_, _ = fmt.Fprintln(w)
}
