package batch

import (
	"fmt"
	"io"
	"strconv"
)

// Stats aggregates decode outcomes over a set of files.
type Stats struct {
	Total        int `json:"total_images" yaml:"total_images"`
	WithBarcodes int `json:"images_with_barcodes" yaml:"images_with_barcodes"`
	Failed       int `json:"failed" yaml:"failed"`
	Barcodes     int `json:"total_barcodes" yaml:"total_barcodes"`
}

// Add counts one file result.
func (s *Stats) Add(r FileResult) {
	s.Total++
	switch {
	case r.Err != nil:
		s.Failed++
	case len(r.Barcodes) > 0:
		s.WithBarcodes++
		s.Barcodes += len(r.Barcodes)
	}
}

// Without is the number of files decoded successfully that held no barcode.
func (s Stats) Without() int {
	return s.Total - s.WithBarcodes - s.Failed
}

// SuccessRate is the share of files with at least one barcode, in percent.
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.WithBarcodes) / float64(s.Total) * 100
}

// WriteStats prints s under title in the console layout. rateLabel is
// "Success rate" for a directory and "Overall success rate" for the whole run.
func WriteStats(w io.Writer, title, rateLabel string, s Stats) {
	_, _ = fmt.Fprintf(w, "\n%s\n", title)
	_, _ = fmt.Fprintf(w, "Total images processed: %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Images with barcodes: %d\n", s.WithBarcodes)
	_, _ = fmt.Fprintf(w, "Images without barcodes: %d\n", s.Without())
	if s.Failed > 0 {
		_, _ = fmt.Fprintf(w, "Failed to process: %d\n", s.Failed)
	}
	_, _ = fmt.Fprintf(w, "Total barcodes found: %d\n", s.Barcodes)
	if s.Total > 0 {
		_, _ = fmt.Fprintf(w, "%s: %s%%\n", rateLabel, strconv.FormatFloat(s.SuccessRate(), 'g', 6, 64))
	}
}
