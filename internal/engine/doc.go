// Package engine is the boundary between pobar and the native barcode engine.
//
// Native is the only way host code reaches the engine. The concrete binding
// lives in package dcv and is linked only with the `dcv` build tag; default
// builds carry no engine and report dcv.ErrNotLinked at startup.
//
// Example:
//
//	go generate ./internal/engine/dcv
//	go build -tags=dcv ./cmd/pobar
package engine
