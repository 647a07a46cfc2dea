package capture

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// PCAPWriter appends radiotap-link-type frames to a capture file.
type PCAPWriter struct {
	f *os.File
	w *pcapgo.Writer
}

// WriterFilename composes the per-interface capture filename from the
// configured prefix and the local time at stage init:
// "{prefix}-{iface}_{YYYY}-{M}-{D}_{H}.{M}.{S}.pcap".
func WriterFilename(prefix, iface string, t time.Time) string {
	return fmt.Sprintf("%s-%s_%d-%d-%d_%d.%d.%d.pcap",
		prefix, iface,
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second())
}

// NewPCAPWriter creates path and writes the radiotap file header.
func NewPCAPWriter(path string) (*PCAPWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating capture file %s: %w", path, err)
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeIEEE80211Radio); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing file header to %s: %w", path, err)
	}
	return &PCAPWriter{f: f, w: w}, nil
}

// WriteFrame appends one frame captured at ts.
func (p *PCAPWriter) WriteFrame(frame []byte, ts time.Time) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(frame),
		Length:        len(frame),
	}
	if err := p.w.WritePacket(ci, frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (p *PCAPWriter) Close() error { return p.f.Close() }
