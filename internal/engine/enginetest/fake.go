// Package enginetest provides a scripted, call-recording engine.Native for tests.
package enginetest

import (
	"sync"
	"unsafe"

	"github.com/MeKo-Tech/pobar/internal/engine"
)

// Call names recorded by Fake.
const (
	CallInitLicense     = "InitLicense"
	CallCreateInstance  = "CreateInstance"
	CallDecodeFile      = "DecodeFile"
	CallReleaseResult   = "ReleaseResult"
	CallDestroyInstance = "DestroyInstance"
)

// Outcome scripts what DecodeFile returns for one path.
type Outcome struct {
	// Null makes DecodeFile return nil.
	Null bool
	// Barcodes are returned in a non-nil result; empty means count 0.
	Barcodes []engine.Barcode
}

// Fake is an in-memory engine.Native. It tracks every boundary call and
// flags double releases, foreign results and use of destroyed handles.
type Fake struct {
	mu sync.Mutex

	// LicenseCode is returned by InitLicense.
	LicenseCode int
	// FailCreate makes CreateInstance return nil.
	FailCreate bool
	// Results maps a path to its scripted outcome. Unknown paths decode to Default.
	Results map[string]Outcome
	// Default is used for paths missing from Results.
	Default Outcome

	calls       []string
	decoded     []string
	licenses    []string
	live        map[*instance]bool
	outstanding map[*result]bool
	released    int
	nonNull     int
	violations  []string
}

type instance struct{ id int }

type result struct {
	barcodes []engine.Barcode
	freed    bool
}

func (r *result) Count() int { return len(r.barcodes) }

func (r *result) Item(i int) engine.Barcode {
	if r.freed {
		panic("enginetest: result read after release")
	}
	return r.barcodes[i]
}

// New returns a Fake that accepts any license and finds nothing.
func New() *Fake {
	return &Fake{
		Results:     map[string]Outcome{},
		live:        map[*instance]bool{},
		outstanding: map[*result]bool{},
	}
}

func (f *Fake) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *Fake) violate(msg string) {
	f.violations = append(f.violations, msg)
}

// InitLicense implements engine.Native.
func (f *Fake) InitLicense(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(CallInitLicense)
	f.licenses = append(f.licenses, key)
	return f.LicenseCode
}

// CreateInstance implements engine.Native.
func (f *Fake) CreateInstance() engine.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(CallCreateInstance)
	if f.FailCreate {
		return nil
	}
	inst := &instance{id: len(f.live) + 1}
	f.live[inst] = true
	return engine.Handle(unsafe.Pointer(inst))
}

// DecodeFile implements engine.Native.
func (f *Fake) DecodeFile(h engine.Handle, path string) engine.RawResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(CallDecodeFile)
	f.decoded = append(f.decoded, path)
	if alive, ok := f.live[(*instance)(h)]; !ok || !alive {
		f.violate("decode on unknown or destroyed instance")
	}

	out, ok := f.Results[path]
	if !ok {
		out = f.Default
	}
	if out.Null {
		return nil
	}
	r := &result{barcodes: append([]engine.Barcode(nil), out.Barcodes...)}
	f.outstanding[r] = true
	f.nonNull++
	return r
}

// ReleaseResult implements engine.Native.
func (f *Fake) ReleaseResult(raw engine.RawResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(CallReleaseResult)
	r, ok := raw.(*result)
	switch {
	case !ok || r == nil:
		f.violate("release of a result not produced by this engine")
		return
	case r.freed:
		f.violate("double release")
		return
	}
	r.freed = true
	delete(f.outstanding, r)
	f.released++
}

// DestroyInstance implements engine.Native.
func (f *Fake) DestroyInstance(h engine.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(CallDestroyInstance)
	inst := (*instance)(h)
	alive, ok := f.live[inst]
	switch {
	case !ok:
		f.violate("destroy of unknown instance")
	case !alive:
		f.violate("double destroy")
	default:
		f.live[inst] = false
	}
}

// Calls returns the boundary calls in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how often call was made.
func (f *Fake) Count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Decoded returns the paths passed to DecodeFile.
func (f *Fake) Decoded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.decoded...)
}

// Licenses returns the keys passed to InitLicense.
func (f *Fake) Licenses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.licenses...)
}

// NonNullResults is the number of non-nil DecodeFile returns.
func (f *Fake) NonNullResults() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonNull
}

// Released is the number of successful ReleaseResult calls.
func (f *Fake) Released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// LiveInstances is the number of created and not yet destroyed instances.
func (f *Fake) LiveInstances() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, alive := range f.live {
		if alive {
			n++
		}
	}
	return n
}

// Violations lists contract breaches observed so far.
func (f *Fake) Violations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.violations...)
	if len(f.outstanding) > 0 {
		out = append(out, "unreleased results outstanding")
	}
	return out
}

// QR returns a QR code barcode with a square location.
func QR(text string) engine.Barcode {
	return engine.Barcode{
		Format: "QR_CODE",
		Text:   text,
		Points: [4]engine.Point{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 110}, {X: 10, Y: 110}},
	}
}
