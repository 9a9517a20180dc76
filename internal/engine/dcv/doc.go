// Package dcv binds engine.Native to the Dynamsoft Capture Vision SDK through cgo.
//
// The binding is only compiled with the dcv build tag and cgo enabled. Without it
// New returns ErrNotLinked so the rest of pobar still builds and tests on machines
// without the SDK. The per-OS link directives live in generated zz_link_*.go files.
package dcv

//go:generate go run ../../../cmd/pobar-build link --out .

import "errors"

// ErrNotLinked is returned by New when pobar was built without the dcv tag.
var ErrNotLinked = errors.New("barcode engine not linked: rebuild with -tags dcv and CGO_ENABLED=1")
