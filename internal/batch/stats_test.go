package batch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/pobar/internal/engine"
)

func TestStats_Add(t *testing.T) {
	var s Stats
	s.Add(FileResult{Path: "a", Barcodes: make([]engine.Barcode, 2)})
	s.Add(FileResult{Path: "b"})
	s.Add(FileResult{Path: "c", Err: errors.New("boom")})

	assert.Equal(t, Stats{Total: 3, WithBarcodes: 1, Failed: 1, Barcodes: 2}, s)
	assert.Equal(t, 1, s.Without())
	assert.InDelta(t, 33.333, s.SuccessRate(), 0.001)
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	WriteStats(&buf, "--- Directory Statistics ---", "Success rate", Stats{Total: 3, WithBarcodes: 2, Barcodes: 5})

	assert.Equal(t, "\n--- Directory Statistics ---\n"+
		"Total images processed: 3\n"+
		"Images with barcodes: 2\n"+
		"Images without barcodes: 1\n"+
		"Total barcodes found: 5\n"+
		"Success rate: 66.6667%\n", buf.String())
}

func TestWriteStats_FailedAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteStats(&buf, "=== Overall Statistics ===", "Overall success rate", Stats{Total: 2, Failed: 2})
	assert.Contains(t, buf.String(), "Failed to process: 2\n")
	assert.Contains(t, buf.String(), "Overall success rate: 0%\n")

	buf.Reset()
	WriteStats(&buf, "t", "Success rate", Stats{})
	assert.NotContains(t, buf.String(), "Success rate")
}
