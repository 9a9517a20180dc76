package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// ErrInvalidPath means the path cannot be passed to the engine as a C string.
var ErrInvalidPath = errors.New("invalid file path")

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reader owns one engine instance for its lifetime.
// It is not safe for concurrent use; create one Reader per goroutine.
type Reader struct {
	native Native
	handle Handle
	logger *slog.Logger
	closed bool
}

// Open activates the license and creates an engine instance.
// A rejected license returns *LicenseError and no instance is created.
func Open(native Native, licenseKey string, opts ...Option) (*Reader, error) {
	r := &Reader{native: native, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	if code := native.InitLicense(licenseKey); code != 0 {
		r.logger.Error("license initialization failed", "code", code)
		return nil, &LicenseError{Code: code}
	}

	h := native.CreateInstance()
	if h == nil {
		r.logger.Error("engine instance creation failed")
		return nil, ErrInstanceCreation
	}
	r.handle = h
	r.logger.Debug("engine instance created")
	return r, nil
}

// Decode reads every barcode in the file at path.
//
// The file must exist; otherwise an error matching ErrPathNotFound is
// returned and the engine is not called. "No barcode found" is an empty
// slice with a nil error, whether the engine returned nothing or an empty result.
func (r *Reader) Decode(ctx context.Context, path string) ([]Barcode, error) {
	if r.closed {
		return nil, ErrReaderClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := CheckPath(path); err != nil {
		return nil, err
	}

	res := NewResult(r.native, r.native.DecodeFile(r.handle, path))
	defer res.Release()

	if res.Null() {
		r.logger.Debug("engine returned no result", "path", path)
	}
	return res.Barcodes()
}

// CheckPath reports whether path may be handed to the engine. A path with a
// NUL byte matches ErrInvalidPath and a missing file matches ErrPathNotFound.
func CheckPath(path string) error {
	if strings.ContainsRune(path, 0) {
		return &PathError{Path: path, Err: ErrInvalidPath}
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &PathError{Path: path, Err: ErrPathNotFound}
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}

// Close destroys the engine instance. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.native.DestroyInstance(r.handle)
	r.handle = nil
	r.logger.Debug("engine instance destroyed")
	return nil
}
