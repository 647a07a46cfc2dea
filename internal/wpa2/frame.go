package wpa2

import "encoding/binary"

// dataHeader is the slice of the 802.11 MAC header the decrypter needs.
type dataHeader struct {
	fc        [2]byte
	length    int
	protected bool
	qos       bool
	tid       byte
	toDS      bool
	fromDS    bool
	a1, a2    addr
	bssid     addr
	sta       addr
	seqCtrl   [2]byte
	addr4     bool
}

func radiotapLen(frame []byte) (int, bool) {
	if len(frame) < 4 || frame[0] != 0 {
		return 0, false
	}
	n := int(binary.LittleEndian.Uint16(frame[2:4]))
	if n < 8 || n > len(frame) {
		return 0, false
	}
	return n, true
}

// parseDataHeader decodes the MAC header of a data frame starting at
// mac[0]. Non-data frames and WDS (addr4) frames are skipped: the key
// table is keyed on the AP-to-station relation, which WDS does not have.
func parseDataHeader(mac []byte) (*dataHeader, bool) {
	if len(mac) < 24 {
		return nil, false
	}
	if (mac[0]>>2)&0x3 != 2 { // data frames only
		return nil, false
	}
	h := &dataHeader{
		fc:        [2]byte{mac[0], mac[1]},
		toDS:      mac[1]&0x01 != 0,
		fromDS:    mac[1]&0x02 != 0,
		protected: mac[1]&0x40 != 0,
		length:    24,
	}
	copy(h.a1[:], mac[4:10])
	copy(h.a2[:], mac[10:16])
	copy(h.seqCtrl[:], mac[22:24])

	switch {
	case !h.toDS && h.fromDS:
		h.bssid = h.a2
		h.sta = h.a1
	case h.toDS && !h.fromDS:
		h.bssid = h.a1
		h.sta = h.a2
	case !h.toDS && !h.fromDS:
		var a3 addr
		copy(a3[:], mac[16:22])
		h.bssid = a3
		h.sta = h.a2
	default:
		return nil, false
	}

	if (mac[0]>>4)&0x8 != 0 { // QoS data subtype
		if len(mac) < 26 {
			return nil, false
		}
		h.qos = true
		h.tid = mac[24] & 0x0f
		h.length = 26
	}
	if len(mac) < h.length {
		return nil, false
	}
	return h, true
}
