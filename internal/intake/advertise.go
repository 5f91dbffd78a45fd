// Package intake adapts the process's external-world boundaries --
// radio sample delivery, SDR hotplug, and service discovery -- to the
// pull-style callback the receive chain expects everywhere else.
package intake

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"

	"github.com/srs-go/enb-ulphy/internal/obslog"
)

const serviceType = "_enb-ulphy._tcp"

// Advertiser runs an mDNS/DNS-SD responder advertising this receiver
// instance (cell id, PRB count) so bench tooling can discover it without
// a fixed IP/port being typed in, the same announce-over-dnssd pattern a
// KISS TNC service would use.
type Advertiser struct {
	responder dnssd.Responder
	cancel    context.CancelFunc
	log       *obslog.Logger
}

// Advertise creates and starts responding to queries for one service
// instance. The returned Advertiser's Close stops the responder.
func Advertise(parent context.Context, name string, port int, pci, numPRB int, log *obslog.Logger) (*Advertiser, error) {
	ctx, cancel := context.WithCancel(parent)
	cfg := dnssd.Config{
		Name: name,
		Type: serviceType,
		Port: port,
		Text: map[string]string{
			"pci":     fmt.Sprintf("%d", pci),
			"num_prb": fmt.Sprintf("%d", numPRB),
		},
	}
	svc, err := dnssd.NewService(cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("intake: create dns-sd service: %w", err)
	}
	responder, err := dnssd.NewResponder()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("intake: create dns-sd responder: %w", err)
	}
	if _, err := responder.Add(svc); err != nil {
		cancel()
		return nil, fmt.Errorf("intake: add dns-sd service: %w", err)
	}

	a := &Advertiser{responder: responder, cancel: cancel, log: log}
	go func() {
		if err := responder.Respond(ctx); err != nil && log != nil {
			log.Warn("dns-sd responder stopped", "err", err)
		}
	}()
	if log != nil {
		log.Info("dns-sd: advertising receiver", "name", name, "port", port, "pci", pci)
	}
	return a, nil
}

// Close stops the responder goroutine.
func (a *Advertiser) Close() { a.cancel() }
