//go:build !dcv || !cgo

package dcv

import "github.com/MeKo-Tech/pobar/internal/engine"

// Linked reports whether the native engine is compiled in.
const Linked = false

// New always fails in builds without the SDK binding.
func New() (engine.Native, error) {
	return nil, ErrNotLinked
}
