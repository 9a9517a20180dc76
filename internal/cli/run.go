package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pobar/internal/batch"
	"github.com/MeKo-Tech/pobar/internal/engine"
)

// Run decodes every file named by args, expanding directories. Each file gets
// its own license activation and engine instance. A rejected license or an
// instance that cannot be created fails only that file; with ContinueOnError
// the run moves on and reports the start-up failures once output is written.
// Without it the first failing file stops the run.
func (d *Driver) Run(ctx context.Context, args []string) (err error) {
	if err := d.cfg.Discovery.ValidatePatterns(); err != nil {
		return err
	}

	text := d.cfg.Format == "text"
	w := d.out
	if text && d.cfg.OutputFile != "" {
		f, ferr := os.Create(d.cfg.OutputFile)
		if ferr != nil {
			return fmt.Errorf("failed to create output file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = f
	}
	// Warnings go to the console stream in text mode and stay out of structured output.
	warnOut := w
	if !text {
		warnOut = d.errOut
	}

	inputs, warnings := batch.Discover(args, d.cfg.Discovery)
	for _, werr := range warnings {
		_, _ = fmt.Fprintf(warnOut, "Warning: %v\n", werr)
	}

	result := &batch.Result{}
	for _, in := range inputs {
		if in.Dir {
			err = d.runDirectory(ctx, w, in, result, text)
		} else {
			err = d.runFile(ctx, w, in.Files[0], result, text)
		}
		if err != nil {
			return err
		}
	}

	if text {
		if d.cfg.ShowStats && len(args) > 1 {
			batch.WriteStats(w, "=== Overall Statistics ===", "Overall success rate", result.Stats)
		}
	} else if err := result.SaveResults(d.out, d.cfg.Format, d.cfg.OutputFile); err != nil {
		return err
	}
	return startupFailures(result.Files)
}

// isStartupFailure reports whether err came from license activation or
// instance creation rather than from decoding.
func isStartupFailure(err error) bool {
	var lerr *engine.LicenseError
	return errors.As(err, &lerr) || errors.Is(err, engine.ErrInstanceCreation)
}

// startupFailures summarizes files that never reached the decoder.
func startupFailures(files []batch.FileResult) error {
	var first error
	n := 0
	for _, fr := range files {
		if isStartupFailure(fr.Err) {
			if first == nil {
				first = fr.Err
			}
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files not processed: %w", n, len(files), first)
}

func (d *Driver) runFile(ctx context.Context, w io.Writer, path string, result *batch.Result, text bool) error {
	var announce io.Writer
	if text {
		announce = w
	}
	fr, err := d.decodeOne(ctx, path, announce)
	if err != nil {
		return err
	}
	result.Add(fr)

	switch {
	case isStartupFailure(fr.Err):
		// open already told the user
		return d.failFile(fr.Err)
	case errors.Is(fr.Err, engine.ErrPathNotFound):
		_, _ = fmt.Fprintf(d.errOut, "File not found: %s\n", path)
		return nil
	case fr.Err != nil:
		_, _ = fmt.Fprintf(d.errOut, "Error: %v\n", fr.Err)
		return d.failFile(fr.Err)
	}
	if text {
		batch.WriteDetail(w, fr.Barcodes)
	}
	return nil
}

func (d *Driver) runDirectory(ctx context.Context, w io.Writer, in batch.Input, result *batch.Result, text bool) error {
	if text {
		_, _ = fmt.Fprintf(w, "\n=== Processing Directory: %s ===\n", in.Arg)
		if len(in.Files) == 0 {
			_, _ = fmt.Fprintln(w, "No supported image files found in directory.")
			return nil
		}
		_, _ = fmt.Fprintf(w, "Found %d image files. Processing...\n", len(in.Files))
	}

	var stats batch.Stats
	for _, path := range in.Files {
		fr, err := d.decodeOne(ctx, path, nil)
		if err != nil {
			return err
		}
		result.Add(fr)
		stats.Add(fr)

		name := filepath.Base(path)
		switch {
		case fr.Err != nil:
			if text {
				_, _ = fmt.Fprintf(w, "✗ %s (error: %v)\n", name, fr.Err)
			}
			if err := d.failFile(fr.Err); err != nil {
				return err
			}
		case !text:
		case len(fr.Barcodes) > 0:
			_, _ = fmt.Fprintf(w, "%s (%d barcodes)\n", name, len(fr.Barcodes))
		default:
			_, _ = fmt.Fprintf(w, "%s (no barcodes)\n", name)
		}
	}

	if text && d.cfg.ShowStats {
		batch.WriteStats(w, "--- Directory Statistics ---", "Success rate", stats)
	}
	return nil
}

// decodeOne runs the full per-file lifecycle. Only cancellation is returned
// as an error; start-up and decode problems are carried in the FileResult.
// When announce is set, "Processing file" is written to it once the path has
// been checked and before the engine runs.
func (d *Driver) decodeOne(ctx context.Context, path string, announce io.Writer) (batch.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return batch.FileResult{}, err
	}
	r, err := d.open(d.errOut)
	if err != nil {
		return batch.FileResult{Path: path, Err: err}, nil
	}
	defer func() { _ = r.Close() }()

	if err := engine.CheckPath(path); err != nil {
		return batch.FileResult{Path: path, Err: err}, nil
	}
	if announce != nil {
		_, _ = fmt.Fprintf(announce, "Processing file: %s\n", path)
	}

	barcodes, err := r.Decode(ctx, path)
	if err != nil {
		d.logger.Debug("decode failed", "file", path, "error", err)
		return batch.FileResult{Path: path, Err: err}, nil
	}
	d.writeOverlay(path, barcodes)
	return batch.FileResult{Path: path, Barcodes: barcodes}, nil
}

func (d *Driver) failFile(err error) error {
	if d.cfg.ContinueOnError {
		return nil
	}
	return err
}
