// Package cli drives the barcode engine from the console: an interactive
// prompt sharing one engine instance, or a batch over file and directory
// arguments with a fresh license and instance per file.
package cli

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/pobar/internal/batch"
	"github.com/MeKo-Tech/pobar/internal/engine"
	"github.com/MeKo-Tech/pobar/internal/overlay"
)

// Config holds everything the driver needs besides the engine itself.
type Config struct {
	LicenseKey string

	// Format is text, json, csv or yaml. Empty means text.
	Format     string
	OutputFile string

	OverlayDir   string
	OverlayColor color.Color

	Discovery       batch.Options
	ShowStats       bool
	ContinueOnError bool
}

// Driver runs decode sessions against one engine.Native.
type Driver struct {
	native engine.Native
	cfg    Config
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithOutput sets the writers for results and for error messages.
func WithOutput(out, errOut io.Writer) Option {
	return func(d *Driver) {
		d.out = out
		d.errOut = errOut
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns a Driver writing to stdout and stderr.
func New(native engine.Native, cfg Config, opts ...Option) *Driver {
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.OverlayColor == nil {
		cfg.OverlayColor = color.RGBA{R: 255, A: 255}
	}
	d := &Driver{
		native: native,
		cfg:    cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// open activates the license and creates an instance, printing the failure
// the way the console user expects before returning it.
func (d *Driver) open(w io.Writer) (*engine.Reader, error) {
	r, err := engine.Open(d.native, d.cfg.LicenseKey, engine.WithLogger(d.logger))
	if err == nil {
		return r, nil
	}
	var lerr *engine.LicenseError
	switch {
	case errors.As(err, &lerr):
		_, _ = fmt.Fprintf(w, "License initialization failed with code: %d\n", lerr.Code)
	case errors.Is(err, engine.ErrInstanceCreation):
		_, _ = fmt.Fprintln(w, "Failed to create barcode reader instance")
	}
	return nil, err
}

// writeOverlay renders an overlay when enabled. Failures are logged, never fatal.
func (d *Driver) writeOverlay(path string, barcodes []engine.Barcode) {
	if d.cfg.OverlayDir == "" || len(barcodes) == 0 {
		return
	}
	out, err := overlay.Write(path, barcodes, d.cfg.OverlayDir, d.cfg.OverlayColor)
	if err != nil {
		d.logger.Warn("overlay not written", "file", path, "error", err)
		return
	}
	d.logger.Debug("overlay written", "file", path, "overlay", out)
}
