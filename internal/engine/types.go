package engine

import (
	"errors"
	"fmt"
	"unsafe"
)

// Point is an integer corner in image coordinates.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Barcode is one decoded symbol copied out of engine memory.
type Barcode struct {
	Format string   `json:"format" yaml:"format"`
	Text   string   `json:"text" yaml:"text"`
	Points [4]Point `json:"points" yaml:"points"`
}

// Handle is an opaque reference to one engine instance.
type Handle unsafe.Pointer

// RawResult is a decode result still owned by the engine.
// Its items are only valid until Native.ReleaseResult is called on it.
type RawResult interface {
	// Count returns the number of barcode records.
	Count() int
	// Item copies record i into Go memory.
	Item(i int) Barcode
}

// Native is the single boundary to the foreign engine.
// Implementations are not safe for concurrent use.
type Native interface {
	// InitLicense activates the engine. A non-zero status is fatal for the run.
	InitLicense(key string) int
	// CreateInstance returns nil when the engine could not be constructed.
	CreateInstance() Handle
	// DecodeFile returns nil when the engine produced no result. path must exist.
	DecodeFile(h Handle, path string) RawResult
	// ReleaseResult returns r to the engine. It must be called exactly once per non-nil DecodeFile result.
	ReleaseResult(r RawResult)
	// DestroyInstance frees h. It must be called exactly once per created handle.
	DestroyInstance(h Handle)
}

var (
	// ErrInstanceCreation means CreateInstance returned nil.
	ErrInstanceCreation = errors.New("failed to create barcode reader instance")

	// ErrPathNotFound means the input file does not exist; the engine was not called.
	ErrPathNotFound = errors.New("file not found")

	// ErrReaderClosed is returned when a Reader is used after Close.
	ErrReaderClosed = errors.New("barcode reader is closed")

	// ErrResultReleased is returned when a Result is read after Release.
	ErrResultReleased = errors.New("decode result already released")
)

// LicenseError reports the status code of a rejected license.
type LicenseError struct {
	Code int
}

func (e *LicenseError) Error() string {
	return fmt.Sprintf("license initialization failed with code: %d", e.Code)
}

// PathError wraps ErrPathNotFound with the offending path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Path)
}

func (e *PathError) Unwrap() error { return e.Err }
