// Package stages holds the concrete stage behaviors wired by the topology
// builder: live capture, file reading, channel hopping, pcap writing,
// persistence, decryption, and indexing.
package stages

import (
	"errors"
	"fmt"
	"time"

	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/metrics"
	"github.com/skyseer/wifibeat/internal/packet"
	"github.com/skyseer/wifibeat/internal/stage"
)

// SourceOpener opens the packet source a capture or file-reader behavior
// pulls from. Tests substitute an in-memory source.
type SourceOpener func() (capture.PacketSource, error)

// Capture pulls frames from a live monitor-mode interface and fans them out
// with a capture timestamp taken from the real-time clock.
type Capture struct {
	iface string
	index int
	open  SourceOpener
	src   capture.PacketSource
}

// NewCapture builds the live-capture behavior for iface with an optional
// BPF filter. index identifies the interface in downstream documents.
func NewCapture(iface, filter string, index int) *Capture {
	return &Capture{
		iface: iface,
		index: index,
		open:  func() (capture.PacketSource, error) { return capture.OpenLive(iface, filter) },
	}
}

// NewCaptureWithOpener is the test seam: same behavior, caller-supplied
// source.
func NewCaptureWithOpener(iface string, index int, open SourceOpener) *Capture {
	return &Capture{iface: iface, index: index, open: open}
}

func (c *Capture) Describe() string { return fmt.Sprintf("capture[%s]", c.iface) }

func (c *Capture) Init() error {
	src, err := c.open()
	if err != nil {
		return err
	}
	c.src = src
	return nil
}

// Recurring performs one readiness check and forwards at most one frame.
// The live source never terminates itself.
func (c *Capture) Recurring(rt *stage.Stage) error {
	data, _, err := c.src.ReadPacket()
	if err != nil {
		if errors.Is(err, capture.ErrNotReady) {
			return nil
		}
		return err
	}
	h := packet.New(data, time.Now(), c.index)
	if err := rt.SendDownstream(h); err != nil {
		metrics.PacketsDropped.WithLabelValues(rt.Name(), "fanout").Inc()
		rt.Log().Debug("dropping frame", "error", err)
		return nil
	}
	metrics.PacketsOut.WithLabelValues(rt.Name()).Inc()
	return nil
}

// Close releases the sniffer. Called by the topology after the stage has
// been stopped and joined.
func (c *Capture) Close() {
	if c.src != nil {
		c.src.Close()
		c.src = nil
	}
}
