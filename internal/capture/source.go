package capture

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// ErrNotReady is returned by a live source when no frame was readable
// within the readiness window. The caller's tick simply moves on.
var ErrNotReady = errors.New("capture: no frame ready")

// readyTimeout is the live source's per-read readiness window.
const readyTimeout = time.Microsecond

// PacketSource yields one frame at a time. Live sources return ErrNotReady
// when nothing is readable; file sources return io.EOF when exhausted.
type PacketSource interface {
	ReadPacket() (data []byte, ci gopacket.CaptureInfo, err error)
	LinkType() layers.LinkType
	Close()
}

func wifiLinkType(lt layers.LinkType) bool {
	return lt == layers.LinkTypeIEEE802_11 || lt == layers.LinkTypeIEEE80211Radio
}

// LiveSource captures from a monitor-mode interface in immediate mode with
// an optional BPF filter.
type LiveSource struct {
	handle *pcap.Handle
}

// OpenLive validates iface, brings it up, and opens an immediate-mode
// sniffer with a 1 microsecond read timeout so each tick's readiness check
// never stalls the worker. Link types other than 802.11 (with or without
// radiotap) are rejected.
func OpenLive(iface, filter string) (*LiveSource, error) {
	if _, err := net.InterfaceByName(iface); err != nil {
		return nil, fmt.Errorf("interface %s: %w", iface, err)
	}
	if err := InterfaceUp(iface); err != nil {
		return nil, err
	}

	inactive, err := pcap.NewInactiveHandle(iface)
	if err != nil {
		return nil, fmt.Errorf("creating sniffer on %s: %w", iface, err)
	}
	defer inactive.CleanUp()
	if err := inactive.SetSnapLen(65536); err != nil {
		return nil, fmt.Errorf("snaplen on %s: %w", iface, err)
	}
	if err := inactive.SetPromisc(true); err != nil {
		return nil, fmt.Errorf("promisc on %s: %w", iface, err)
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, fmt.Errorf("immediate mode on %s: %w", iface, err)
	}
	if err := inactive.SetTimeout(readyTimeout); err != nil {
		return nil, fmt.Errorf("timeout on %s: %w", iface, err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("activating sniffer on %s: %w", iface, err)
	}
	if !wifiLinkType(handle.LinkType()) {
		handle.Close()
		return nil, fmt.Errorf("interface %s has link type %s, expected 802.11", iface, handle.LinkType())
	}
	if filter != "" {
		if err := handle.SetBPFFilter(filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("applying filter %q on %s: %w", filter, iface, err)
		}
	}
	return &LiveSource{handle: handle}, nil
}

func (s *LiveSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			return nil, gopacket.CaptureInfo{}, ErrNotReady
		}
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("reading packet: %w", err)
	}
	return data, ci, nil
}

func (s *LiveSource) LinkType() layers.LinkType { return s.handle.LinkType() }

func (s *LiveSource) Close() { s.handle.Close() }

// FileSource reads a finite sequence of frames from a capture file.
type FileSource struct {
	handle *pcap.Handle
}

// OpenFile validates that path exists, opens it, and rejects non-wifi link
// types.
func OpenFile(path string) (*FileSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("capture file %s: %w", path, err)
	}
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture file %s: %w", path, err)
	}
	if !wifiLinkType(handle.LinkType()) {
		handle.Close()
		return nil, fmt.Errorf("capture file %s has link type %s, expected 802.11", path, handle.LinkType())
	}
	return &FileSource{handle: handle}, nil
}

func (s *FileSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, gopacket.CaptureInfo{}, io.EOF
		}
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("reading packet: %w", err)
	}
	return data, ci, nil
}

func (s *FileSource) LinkType() layers.LinkType { return s.handle.LinkType() }

func (s *FileSource) Close() { s.handle.Close() }
