package parser

import (
	"encoding/binary"
	"fmt"

	"github.com/skyseer/wifibeat/internal/core"
)

const (
	subAssocRequest   = 0x0
	subAssocResponse  = 0x1
	subReassocRequest = 0x2
	subProbeResponse  = 0x5
	subBeacon         = 0x8
	subAuthentication = 0xB
	subDeauth         = 0xC
)

// parseManagement builds `wlan_mgt`: fixed parameters per subtype,
// followed by every tagged information element.
func parseManagement(h *dot11Header, body []byte) (Document, error) {
	fixed := Document{}
	iesStart := 0

	switch h.Subtype {
	case subAssocRequest, subReassocRequest:
		if len(body) < 4 {
			return nil, core.ErrFrameTooShort
		}
		fixed["capabilities"] = parseCapabilities(binary.LittleEndian.Uint16(body[0:2]))
		fixed["listen_ival"] = int(binary.LittleEndian.Uint16(body[2:4]))
		iesStart = 4

	case subAssocResponse:
		if len(body) < 6 {
			return nil, core.ErrFrameTooShort
		}
		status := int(binary.LittleEndian.Uint16(body[2:4]))
		fixed["capabilities"] = parseCapabilities(binary.LittleEndian.Uint16(body[0:2]))
		fixed["status_code"] = status
		fixed["status_code_parsed"] = statusCodeText(status)
		fixed["aid"] = int(binary.LittleEndian.Uint16(body[4:6]))
		iesStart = 6

	case subProbeResponse, subBeacon:
		if len(body) < 12 {
			return nil, core.ErrFrameTooShort
		}
		ts := binary.LittleEndian.Uint64(body[0:8])
		beaconIval := binary.LittleEndian.Uint16(body[8:10])
		fixed["timestamp"] = ts
		fixed["timestamp_hex"] = fmt.Sprintf("0x%016x", ts)
		fixed["beacon"] = int(beaconIval)
		fixed["beacon_interval_usec"] = int(beaconIval) * 1024
		fixed["capabilities"] = parseCapabilities(binary.LittleEndian.Uint16(body[10:12]))
		iesStart = 12

	case subAuthentication:
		if len(body) < 6 {
			return nil, core.ErrFrameTooShort
		}
		alg := binary.LittleEndian.Uint16(body[0:2])
		authType := "Shared"
		if alg == 0 {
			authType = "Open"
		}
		status := int(binary.LittleEndian.Uint16(body[4:6]))
		fixed["auth"] = Document{"alg": int(alg), "type": authType}
		fixed["auth_seq"] = int(binary.LittleEndian.Uint16(body[2:4]))
		fixed["status_code"] = status
		fixed["status_code_parsed"] = statusCodeText(status)
		iesStart = 6

	case subDeauth:
		if len(body) < 2 {
			return nil, core.ErrFrameTooShort
		}
		reason := int(binary.LittleEndian.Uint16(body[0:2]))
		fixed["reason_code"] = reason
		fixed["reason_code_parsed"] = reasonCodeText(reason)
		iesStart = 2
	}

	doc := Document{"fixed": fixed}
	if iesStart < len(body) {
		for k, v := range parseIEs(body[iesStart:]) {
			doc[k] = v
		}
	}
	return doc, nil
}
