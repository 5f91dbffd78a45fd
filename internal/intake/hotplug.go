package intake

import (
	"context"

	"github.com/jochenvg/go-udev"

	"github.com/srs-go/enb-ulphy/internal/obslog"
)

// HotplugEvent reports one SDR USB device arriving or leaving.
type HotplugEvent struct {
	Action     string // "add" or "remove"
	DevicePath string
	Vendor     string
	Product    string
}

// WatchSDRHotplug monitors udev for USB devices in the "sound" subsystem
// (the class SDR front-ends backed by a USB audio codec enumerate
// under) and sends an event for each add/remove, until ctx is canceled.
func WatchSDRHotplug(ctx context.Context, log *obslog.Logger) (<-chan HotplugEvent, error) {
	u := udev.Udev{}
	monitor := u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem("sound"); err != nil {
		return nil, err
	}

	deviceCh, errCh, err := monitor.DeviceChan(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan HotplugEvent, 8)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deviceCh:
				if !ok {
					return
				}
				out <- HotplugEvent{
					Action:     d.Action(),
					DevicePath: d.Syspath(),
					Vendor:     d.PropertyValue("ID_VENDOR"),
					Product:    d.PropertyValue("ID_MODEL"),
				}
			case err := <-errCh:
				if err != nil && log != nil {
					log.Warn("udev monitor error", "err", err)
				}
			}
		}
	}()
	return out, nil
}
