package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MeKo-Tech/pobar/internal/batch"
	"github.com/MeKo-Tech/pobar/internal/engine"
)

const banner = `*************************************************
Welcome to pobar, the Dynamsoft Barcode Reader console
*************************************************
Supports both single files and directories as arguments.
Usage: pobar [file_or_directory ...]
Or run without arguments for interactive mode.
Hints: Please input 'Q' or 'q' to quit the application.
`

const prompt = "\n>> Step 1: Input your image file's full path:\n"

// Interactive reads paths from in until "q" or end of input, decoding each
// with one shared engine instance. The instance is destroyed on every return path.
func (d *Driver) Interactive(ctx context.Context, in io.Reader) error {
	_, _ = io.WriteString(d.out, banner)

	r, err := d.open(d.out)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	// ReadString has no line length limit; an overlong line is just an invalid path.
	lines := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = io.WriteString(d.out, prompt)
		line, err := lines.ReadString('\n')
		switch {
		case errors.Is(err, io.EOF) && line == "":
			return nil
		case err != nil && !errors.Is(err, io.EOF):
			return err
		}

		path := NormalizeInput(line)
		switch {
		case IsQuit(path):
			d.logger.Debug("quit requested")
			return nil
		case path == "":
			continue
		}

		if err := engine.CheckPath(path); err != nil {
			d.logger.Debug("rejected input path", "error", err)
			_, _ = fmt.Fprintf(d.out, "Please input a valid path: %s\n", path)
			continue
		}

		_, _ = fmt.Fprintf(d.out, "Processing file: %s\n", path)
		barcodes, err := r.Decode(ctx, path)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			d.logger.Error("decode failed", "file", path, "error", err)
			_, _ = fmt.Fprintf(d.out, "Error: %v\n", err)
			continue
		}

		batch.WriteDetail(d.out, barcodes)
		d.writeOverlay(path, barcodes)
	}
}
