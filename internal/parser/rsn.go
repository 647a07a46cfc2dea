package parser

import "encoding/binary"

// cipherSuiteLabel implements the §4.9.4 mapping for OUI 00-0f-ac.
func cipherSuiteLabel(suite [4]byte) string {
	if suite[0] != 0x00 || suite[1] != 0x0f || suite[2] != 0xac {
		return "unknown"
	}
	switch suite[3] {
	case 1:
		return "WEP40"
	case 2:
		return "TKIP"
	case 4:
		return "CCM"
	case 5:
		return "WEP104"
	default:
		return "unknown"
	}
}

func akmSuiteLabel(suite [4]byte) string {
	if suite[0] != 0x00 || suite[1] != 0x0f || suite[2] != 0xac {
		return "unknown"
	}
	switch suite[3] {
	case 1:
		return "EAP"
	case 2:
		return "PSK"
	default:
		return "unknown"
	}
}

// parseRSN decodes IE 48 into
// `rsn.{version, capabilities.*, akms.{count,list[]}, pcs.{count,list[]}, gcs}`.
func parseRSN(body []byte) Document {
	d := Document{}
	if len(body) < 2 {
		return d
	}
	d["version"] = int(binary.LittleEndian.Uint16(body[0:2]))
	pos := 2

	if pos+4 <= len(body) {
		var gcs [4]byte
		copy(gcs[:], body[pos:pos+4])
		d["gcs"] = cipherSuiteLabel(gcs)
		pos += 4
	}

	if pos+2 <= len(body) {
		count := int(binary.LittleEndian.Uint16(body[pos : pos+2]))
		pos += 2
		list := make([]any, 0, count)
		for i := 0; i < count && pos+4 <= len(body); i++ {
			var s [4]byte
			copy(s[:], body[pos:pos+4])
			list = append(list, cipherSuiteLabel(s))
			pos += 4
		}
		d["pcs"] = Document{"count": count, "list": list}
	}

	if pos+2 <= len(body) {
		count := int(binary.LittleEndian.Uint16(body[pos : pos+2]))
		pos += 2
		list := make([]any, 0, count)
		for i := 0; i < count && pos+4 <= len(body); i++ {
			var s [4]byte
			copy(s[:], body[pos:pos+4])
			list = append(list, akmSuiteLabel(s))
			pos += 4
		}
		d["akms"] = Document{"count": count, "list": list}
	}

	if pos+2 <= len(body) {
		v := binary.LittleEndian.Uint16(body[pos : pos+2])
		d["capabilities"] = Document{
			"preauth":               v&0x0001 != 0,
			"no_pairwise":           v&0x0002 != 0,
			"ptksa_replay_counter":  int((v >> 2) & 0x3),
			"gtksa_replay_counter":  int((v >> 4) & 0x3),
			"mfp_required":          v&0x0040 != 0,
			"mfp_capable":           v&0x0080 != 0,
		}
	}
	return d
}
