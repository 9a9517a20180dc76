//go:build dcv && cgo && !linux && !darwin && !windows

package dcv

// The SDK ships libraries for linux, darwin and windows only.
var _ = dcvIsOnlyAvailableOnLinuxDarwinAndWindows
