package parser

import (
	"encoding/binary"

	"github.com/skyseer/wifibeat/internal/core"
)

// radiotapHeaderLen locates the radiotap header so the 802.11 header that
// follows can be found. Field decoding is intentionally minimal in this
// release: an empty `radiotap` object is emitted.
func radiotapHeaderLen(frame []byte) (int, error) {
	if len(frame) < 8 {
		return 0, core.ErrNoRadiotap
	}
	// byte 0: it_version, must be 0. byte 1: it_pad. bytes 2-3: it_len (LE).
	if frame[0] != 0 {
		return 0, core.ErrNoRadiotap
	}
	length := int(binary.LittleEndian.Uint16(frame[2:4]))
	if length < 8 || length > len(frame) {
		return 0, core.ErrFrameTooShort
	}
	return length, nil
}
