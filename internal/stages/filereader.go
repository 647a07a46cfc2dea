package stages

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/metrics"
	"github.com/skyseer/wifibeat/internal/packet"
	"github.com/skyseer/wifibeat/internal/stage"
)

// FileIndex marks handles that originate from a capture file rather than a
// live interface.
const FileIndex = -1

// FileReader replays a prerecorded capture file, one frame per tick, and
// requests its own stop at end of file.
type FileReader struct {
	path string
	open SourceOpener
	src  capture.PacketSource
}

func NewFileReader(path string) *FileReader {
	return &FileReader{
		path: path,
		open: func() (capture.PacketSource, error) { return capture.OpenFile(path) },
	}
}

// NewFileReaderWithOpener is the test seam.
func NewFileReaderWithOpener(path string, open SourceOpener) *FileReader {
	return &FileReader{path: path, open: open}
}

func (f *FileReader) Describe() string { return fmt.Sprintf("filereader[%s]", f.path) }

func (f *FileReader) Init() error {
	src, err := f.open()
	if err != nil {
		return err
	}
	f.src = src
	return nil
}

func (f *FileReader) Recurring(rt *stage.Stage) error {
	data, _, err := f.src.ReadPacket()
	if err != nil {
		if errors.Is(err, io.EOF) {
			rt.ThreadFinished()
			return nil
		}
		return err
	}
	h := packet.New(data, time.Now(), FileIndex)
	if err := rt.SendDownstream(h); err != nil {
		metrics.PacketsDropped.WithLabelValues(rt.Name(), "fanout").Inc()
		rt.Log().Debug("dropping frame", "error", err)
		return nil
	}
	metrics.PacketsOut.WithLabelValues(rt.Name()).Inc()
	return nil
}

func (f *FileReader) Close() {
	if f.src != nil {
		f.src.Close()
		f.src = nil
	}
}
