//go:build !linux
// +build !linux

// hioload-channels/internal/concurrency/pin.go
// Author: momentics <momentics@gmail.com>
//
// Platform-generic CPU pinning. Overridden on Linux.

package concurrency

// PinCurrentThread is a no-op outside Linux.
func PinCurrentThread(cpuID int) error {
	return ErrAffinityNotSupported
}

// UnpinCurrentThread is a no-op outside Linux.
func UnpinCurrentThread() {}
