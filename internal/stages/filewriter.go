package stages

import (
	"fmt"
	"time"

	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/metrics"
	"github.com/skyseer/wifibeat/internal/stage"
)

// FileWriter persists every frame of one interface to a timestamped pcap
// file, then forwards each handle unchanged down the primary path.
type FileWriter struct {
	prefix string
	iface  string
	w      *capture.PCAPWriter
}

func NewFileWriter(prefix, iface string) *FileWriter {
	return &FileWriter{prefix: prefix, iface: iface}
}

func (f *FileWriter) Describe() string { return fmt.Sprintf("filewriter[%s]", f.iface) }

func (f *FileWriter) Init() error {
	path := capture.WriterFilename(f.prefix, f.iface, time.Now())
	w, err := capture.NewPCAPWriter(path)
	if err != nil {
		return err
	}
	f.w = w
	return nil
}

func (f *FileWriter) Recurring(rt *stage.Stage) error {
	for _, h := range rt.Drain() {
		if err := f.w.WriteFrame(h.Frame, h.Captured); err != nil {
			rt.Log().Error("writing frame to pcap", "error", err)
		}
		if err := rt.SendDownstream(h); err != nil {
			metrics.PacketsDropped.WithLabelValues(rt.Name(), "fanout").Inc()
			rt.Log().Debug("dropping frame", "error", err)
			continue
		}
		metrics.PacketsOut.WithLabelValues(rt.Name()).Inc()
	}
	return nil
}

func (f *FileWriter) Close() {
	if f.w != nil {
		f.w.Close()
		f.w = nil
	}
}
