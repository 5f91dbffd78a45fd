//go:build linux

package receiver

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinToCore locks the calling goroutine to its current OS thread and
// restricts that thread's scheduling affinity to a single CPU core,
// keeping one cell instance's dedicated receive thread off the rest of
// the machine's cores. Call once from the goroutine that will run
// Coordinator.ProcessSubframe for the lifetime of the process.
func PinToCore(core int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
