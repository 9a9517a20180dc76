package engine

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// noCopy makes `go vet` flag copies of a Result; copying would duplicate the release obligation.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Result pairs an engine-owned RawResult with the obligation to release it.
// Read it with Barcodes, then call Release exactly once; extra calls are no-ops.
type Result struct {
	_ noCopy

	native   Native
	raw      RawResult
	released bool
}

// NewResult takes ownership of raw, which may be nil.
func NewResult(native Native, raw RawResult) *Result {
	return &Result{native: native, raw: raw}
}

// Null reports whether the engine returned no result at all.
func (r *Result) Null() bool {
	return r.raw == nil
}

// Count returns the number of records, 0 for a null result.
func (r *Result) Count() int {
	if r.raw == nil || r.released {
		return 0
	}
	return r.raw.Count()
}

// Barcodes copies every record into Go memory.
// A null result and an empty result both yield an empty slice.
// UTF-8 text is put in NFC form; other payloads are kept byte for byte.
func (r *Result) Barcodes() ([]Barcode, error) {
	if r.released {
		return nil, ErrResultReleased
	}
	n := r.Count()
	out := make([]Barcode, 0, n)
	for i := range n {
		b := r.raw.Item(i)
		if utf8.ValidString(b.Text) {
			b.Text = norm.NFC.String(b.Text)
		}
		out = append(out, b)
	}
	return out, nil
}

// Release hands the result back to the engine. Null results are never passed to the engine.
func (r *Result) Release() {
	if r.released {
		return
	}
	r.released = true
	if r.raw != nil {
		r.native.ReleaseResult(r.raw)
		r.raw = nil
	}
}
