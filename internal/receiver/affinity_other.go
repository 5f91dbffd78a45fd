//go:build !linux

package receiver

import "github.com/srs-go/enb-ulphy/internal/cellcfg"

// PinToCore reports NotConfigured on platforms without a Linux-style
// scheduling affinity syscall, so callers can fall back to running
// unpinned rather than failing to build.
func PinToCore(core int) error {
	return cellcfg.Newf(cellcfg.NotConfigured, "receiver: core affinity pinning is not supported on this platform")
}
