package parser

import (
	"encoding/binary"
	"fmt"

	"github.com/skyseer/wifibeat/internal/core"
)

const (
	typeManagement = 0
	typeControl    = 1
	typeData       = 2
)

// dot11Header is the decoded 802.11 MAC header.
type dot11Header struct {
	Version, Type, Subtype byte
	ToDS, FromDS           bool
	MoreFrag, Retry        bool
	PwrMgt, MoreData       bool
	Protected, Order       bool
	Duration               uint16

	A1, A2, A3, A4   [6]byte
	HasA2, HasA3     bool
	HasA4            bool
	Frag, Seq        uint16
	HeaderLen        int
	QoS              uint16
	HasQoS           bool
}

var controlSubtypesWithTA = map[byte]bool{
	0x8: true, // BlockAckReq
	0x9: true, // BlockAck
	0xA: true, // PS-Poll
	0xB: true, // RTS
	0xE: true, // CF-End
	0xF: true, // CF-End+CF-Ack
}

func macString(a [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// parseDot11Header decodes the MAC header starting at frame[0].
func parseDot11Header(frame []byte) (*dot11Header, error) {
	if len(frame) < 10 {
		return nil, core.ErrFrameTooShort
	}
	b0, b1 := frame[0], frame[1]
	h := &dot11Header{
		Version:   b0 & 0x3,
		Type:      (b0 >> 2) & 0x3,
		Subtype:   (b0 >> 4) & 0xF,
		ToDS:      b1&0x01 != 0,
		FromDS:    b1&0x02 != 0,
		MoreFrag:  b1&0x04 != 0,
		Retry:     b1&0x08 != 0,
		PwrMgt:    b1&0x10 != 0,
		MoreData:  b1&0x20 != 0,
		Protected: b1&0x40 != 0,
		Order:     b1&0x80 != 0,
		Duration:  binary.LittleEndian.Uint16(frame[2:4]),
	}
	copy(h.A1[:], frame[4:10])

	switch h.Type {
	case typeControl:
		h.HeaderLen = 10
		if controlSubtypesWithTA[h.Subtype] {
			if len(frame) < 16 {
				return nil, core.ErrFrameTooShort
			}
			copy(h.A2[:], frame[10:16])
			h.HasA2 = true
			h.HeaderLen = 16
		}
	default: // management, data
		if len(frame) < 24 {
			return nil, core.ErrFrameTooShort
		}
		copy(h.A2[:], frame[10:16])
		copy(h.A3[:], frame[16:22])
		h.HasA2, h.HasA3 = true, true
		seqCtrl := binary.LittleEndian.Uint16(frame[22:24])
		h.Frag = seqCtrl & 0x000F
		h.Seq = seqCtrl >> 4
		h.HeaderLen = 24
		if h.ToDS && h.FromDS {
			if len(frame) < 30 {
				return nil, core.ErrFrameTooShort
			}
			copy(h.A4[:], frame[24:30])
			h.HasA4 = true
			h.HeaderLen = 30
		}
		if h.Type == typeData && h.Subtype&0x8 != 0 {
			if len(frame) < h.HeaderLen+2 {
				return nil, core.ErrFrameTooShort
			}
			h.QoS = binary.LittleEndian.Uint16(frame[h.HeaderLen : h.HeaderLen+2])
			h.HasQoS = true
			h.HeaderLen += 2
		}
	}
	return h, nil
}

// typeSubtypeLabel names the management frame subtype used for
// `wlan.fc.type_subtype`.
func typeSubtypeLabel(t, subtype byte) string {
	if t != typeManagement {
		return fmt.Sprintf("type%d-subtype%d", t, subtype)
	}
	switch subtype {
	case 0x0:
		return "Association Request"
	case 0x1:
		return "Association Response"
	case 0x2:
		return "Reassociation Request"
	case 0x3:
		return "Reassociation Response"
	case 0x4:
		return "Probe Request"
	case 0x5:
		return "Probe Response"
	case 0x8:
		return "Beacon"
	case 0x9:
		return "ATIM"
	case 0xA:
		return "Disassociate"
	case 0xB:
		return "Authentication"
	case 0xC:
		return "Deauthentication"
	case 0xD:
		return "Action"
	default:
		return fmt.Sprintf("mgmt-subtype%d", subtype)
	}
}

// wlanDoc fills the `wlan` top-level object: frame-control flags,
// addresses derived from the (tods, fromds) combination, and the
// fragment/sequence numbers.
func wlanDoc(h *dot11Header) Document {
	ds := 0
	if h.FromDS {
		ds += 10
	}
	if h.ToDS {
		ds++
	}
	fc := Document{
		"type":          int(h.Type),
		"subtype":       int(h.Subtype),
		"type_subtype":  typeSubtypeLabel(h.Type, h.Subtype),
		"ds":            ds,
		"tods":          h.ToDS,
		"fromds":        h.FromDS,
		"frag":          h.MoreFrag,
		"retry":         h.Retry,
		"pwrmgt":        h.PwrMgt,
		"moredata":      h.MoreData,
		"protected":     h.Protected,
		"order":         h.Order,
	}
	d := Document{
		"fc":       fc,
		"duration": int(h.Duration),
		"ra":       macString(h.A1),
		"frag":     int(h.Frag),
		"seq":      int(h.Seq),
	}

	if h.Type == typeControl {
		if h.HasA2 {
			d["ta"] = macString(h.A2)
		}
		return d
	}

	switch {
	case !h.ToDS && !h.FromDS:
		d["da"] = macString(h.A1)
		d["ta"] = macString(h.A2)
		d["sa"] = macString(h.A2)
		d["bssid"] = macString(h.A3)
	case !h.ToDS && h.FromDS:
		d["da"] = macString(h.A1)
		d["ta"] = macString(h.A2)
		d["sa"] = macString(h.A3)
		d["bssid"] = macString(h.A2)
		d["sta"] = macString(h.A1)
	case h.ToDS && !h.FromDS:
		d["da"] = macString(h.A3)
		d["ta"] = macString(h.A2)
		d["sa"] = macString(h.A2)
		d["bssid"] = macString(h.A1)
		d["sta"] = macString(h.A2)
	default: // WDS
		d["da"] = macString(h.A2)
		d["ta"] = macString(h.A3)
		d["sa"] = macString(h.A4)
		d["wds"] = true
	}
	return d
}
