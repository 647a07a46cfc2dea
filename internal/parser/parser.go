package parser

import (
	"fmt"

	"github.com/skyseer/wifibeat/internal/core"
	"github.com/skyseer/wifibeat/internal/packet"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Parse converts a captured frame plus its timestamp into a Document. Each
// step is fatal to the frame on failure; the indexer drops the handle and
// continues with the rest of the batch.
func Parse(h *packet.Handle) (Document, error) {
	rtLen, err := radiotapHeaderLen(h.Frame)
	if err != nil {
		return nil, err
	}

	mac := h.Frame[rtLen:]
	header, err := parseDot11Header(mac)
	if err != nil {
		return nil, err
	}

	wlan := wlanDoc(header)
	if h.DecryptAttempted {
		wlan["decrypted"] = h.Decrypted
	}

	doc := Document{
		"@timestamp": h.Captured.UTC().Format(timestampLayout),
		"radiotap":   Document{},
		"wlan":       wlan,
	}

	body := mac[header.HeaderLen:]
	switch header.Type {
	case typeManagement:
		mgmt, err := parseManagement(header, body)
		if err != nil {
			return nil, err
		}
		doc["wlan_mgt"] = mgmt
	case typeControl:
		doc["control"] = parseControl()
	case typeData:
		if header.HasQoS {
			doc["qos"] = parseQoS(header.QoS)
		}
		// wep/tkip/ccmp/data sub-objects are reserved (Non-goal: full
		// radiotap/crypto field decoding) and intentionally never set.
	default:
		return nil, fmt.Errorf("%w: type %d", core.ErrUnsupportedFrame, header.Type)
	}

	return doc, nil
}
