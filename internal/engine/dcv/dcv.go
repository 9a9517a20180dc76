//go:build dcv && cgo

package dcv

/*
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"unsafe"

	"github.com/MeKo-Tech/pobar/internal/engine"
)

// Linked reports whether the native engine is compiled in.
const Linked = true

// Engine calls into the SDK shim. The zero value is ready to use.
type Engine struct{}

// New returns the cgo-backed engine.
func New() (engine.Native, error) {
	return &Engine{}, nil
}

// InitLicense implements engine.Native.
func (*Engine) InitLicense(key string) int {
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))
	return int(C.pobar_init_license(ck))
}

// CreateInstance implements engine.Native.
func (*Engine) CreateInstance() engine.Handle {
	return engine.Handle(C.pobar_create_instance())
}

// DecodeFile implements engine.Native.
func (*Engine) DecodeFile(h engine.Handle, path string) engine.RawResult {
	cp := C.CString(path)
	defer C.free(unsafe.Pointer(cp))

	p := C.pobar_decode_file(unsafe.Pointer(h), cp)
	if p == nil {
		// a typed nil *results would not compare equal to nil
		return nil
	}
	return &results{p: p}
}

// ReleaseResult implements engine.Native.
func (*Engine) ReleaseResult(raw engine.RawResult) {
	r, ok := raw.(*results)
	if !ok || r == nil || r.p == nil {
		return
	}
	C.pobar_free_results(r.p)
	r.p = nil
}

// DestroyInstance implements engine.Native.
func (*Engine) DestroyInstance(h engine.Handle) {
	if h == nil {
		return
	}
	C.pobar_destroy_instance(unsafe.Pointer(h))
}

// results views a C result set in place until it is freed.
type results struct {
	p *C.pobar_results
}

func (r *results) Count() int {
	if r.p == nil {
		return 0
	}
	return int(r.p.count)
}

func (r *results) Item(i int) engine.Barcode {
	items := unsafe.Slice(r.p.items, int(r.p.count))
	b := items[i]
	return engine.Barcode{
		Format: C.GoString(b.format),
		Text:   C.GoString(b.text),
		Points: [4]engine.Point{
			{X: int(b.x1), Y: int(b.y1)},
			{X: int(b.x2), Y: int(b.y2)},
			{X: int(b.x3), Y: int(b.y3)},
			{X: int(b.x4), Y: int(b.y4)},
		},
	}
}
