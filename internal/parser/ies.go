package parser

import "fmt"

// ieState accumulates the tagged information elements of a management frame
// into the wlan_mgt.* keys.
type ieState struct {
	wlanMgt Document
	ht      Document
	tagged  []any
}

func parseIEs(buf []byte) Document {
	st := &ieState{wlanMgt: Document{}}
	pos := 0
	for pos+2 <= len(buf) {
		num := int(buf[pos])
		length := int(buf[pos+1])
		pos += 2
		if pos+length > len(buf) {
			break
		}
		body := buf[pos : pos+length]
		pos += length
		st.decode(num, length, body)
	}
	if st.ht != nil {
		st.wlanMgt["ht"] = st.ht
	}
	st.wlanMgt["tagged"] = st.tagged
	return st.wlanMgt
}

func (st *ieState) mark(num, length int) {
	st.tagged = append(st.tagged, Document{"number": num, "length": length})
}

func (st *ieState) decode(num, length int, body []byte) {
	switch num {
	case 0:
		st.ssid(body)
		st.mark(num, length)
	case 1:
		st.rates("supported_rates", body)
		st.mark(num, length)
	case 3:
		st.dsParam(body)
		st.mark(num, length)
	case 5:
		st.tim(body)
		st.mark(num, length)
	case 7:
		st.countryInfo(body)
		st.mark(num, length)
	case 42, 47:
		st.erpInfo(body)
		st.mark(num, length)
	case 45:
		st.htCapabilities(body)
		st.mark(num, length)
	case 48:
		st.wlanMgt["rsn"] = parseRSN(body)
		st.mark(num, length)
	case 50:
		st.rates("extended_supported_rates", body)
		st.mark(num, length)
	case 51:
		st.apChannelReport(body)
		st.mark(num, length)
	case 61:
		st.htInformation(body)
		st.mark(num, length)
	case 127:
		st.extendedCapabilities(body)
		st.mark(num, length)
	case 221:
		st.vendorSpecific(body)
		st.mark(num, length)
	default:
		st.tagged = append(st.tagged, Document{"number": num, "length": length, "unknown": "please report this frame"})
	}
}

func (st *ieState) ssid(body []byte) {
	if len(body) == 0 {
		st.wlanMgt["ssid_broadcast"] = true
		return
	}
	if len(body) > 32 {
		st.wlanMgt["ssid_too_long"] = true
	}
	st.wlanMgt["ssid"] = string(body)
}

func (st *ieState) rates(key string, body []byte) {
	raw := append([]byte(nil), body...)
	mbit := make([]any, len(body))
	for i, b := range body {
		if b == 0xFF {
			mbit[i] = -1
		} else {
			mbit[i] = float64(b) / 2
		}
	}
	st.wlanMgt[key] = raw
	st.wlanMgt[key+"_mbit"] = mbit
}

func (st *ieState) dsParam(body []byte) {
	if len(body) < 1 {
		return
	}
	st.wlanMgt["ds"] = Document{"current_channel": int(body[0])}
}

func (st *ieState) tim(body []byte) {
	if len(body) < 3 {
		return
	}
	bmapctl := int(body[2])
	st.wlanMgt["tim"] = Document{
		"dtim_count":             int(body[0]),
		"dtim_period":            int(body[1]),
		"partial_virtual_bitmap": append([]byte(nil), body[3:]...),
		"bmapctl": Document{
			"value":     bmapctl,
			"multicast": bmapctl%2 == 1,
			"offset":    bmapctl / 2,
		},
	}
}

func (st *ieState) countryInfo(body []byte) {
	if len(body) < 3 {
		return
	}
	var fnm []any
	for i := 3; i+3 <= len(body); i += 3 {
		fnm = append(fnm, Document{"fcn": int(body[i]), "nc": int(body[i+1]), "mtpl": int(body[i+2])})
	}
	st.wlanMgt["country_info"] = Document{
		"code":        string(body[0:2]),
		"environment": string(body[2:3]),
		"fnm":         fnm,
	}
}

func (st *ieState) erpInfo(body []byte) {
	if len(body) < 1 {
		return
	}
	v := body[0]
	st.wlanMgt["erp_info"] = Document{
		"erp_present":          v&0x1 != 0,
		"use_protection":       v&0x2 != 0,
		"barker_preamble_mode": v&0x4 != 0,
		"reserved":             int(v >> 3),
	}
}

func (st *ieState) apChannelReport(body []byte) {
	if len(body) < 1 {
		return
	}
	chans := make([]any, len(body)-1)
	for i, b := range body[1:] {
		chans[i] = int(b)
	}
	st.wlanMgt["ap_channel_report"] = Document{
		"operating_class": int(body[0]),
		"channel_list":    chans,
	}
}

func (st *ieState) extendedCapabilities(body []byte) {
	if len(body) == 0 {
		return
	}
	v := body[0]
	ec := Document{}
	for i := 0; i < 8; i++ {
		ec[fmt.Sprintf("b%d", i)] = v&(1<<uint(i)) != 0
	}
	// Named aliases for the wireshark-style bit keys. b5 is reserved.
	ec["20_40_coex_mgt"] = v&0x01 != 0
	ec["on_demand_beacon"] = v&0x02 != 0
	ec["ext_chan_switch"] = v&0x04 != 0
	ec["wave_indication"] = v&0x08 != 0
	ec["psmp_capa"] = v&0x10 != 0
	ec["spsmp"] = v&0x40 != 0
	ec["event"] = v&0x80 != 0
	st.wlanMgt["extcap"] = ec
}

var vendorOUINames = map[[3]byte]string{
	{0x00, 0x10, 0x18}: "Broadcom",
	{0x00, 0x50, 0xf2}: "Microsoft",
	{0x00, 0x0c, 0x43}: "RalinkTe",
	{0x00, 0x90, 0x4c}: "Epigram",
	{0x00, 0x03, 0x7f}: "AtherosC",
	{0x00, 0x13, 0x92}: "RuckusWi",
}

func (st *ieState) vendorSpecific(body []byte) {
	if len(body) < 4 {
		return
	}
	var oui [3]byte
	copy(oui[:], body[0:3])
	vtype := body[3]
	tag := Document{
		"oui":        append([]byte(nil), oui[:]...),
		"oui_parsed": fmt.Sprintf("%02x-%02x-%02x", oui[0], oui[1], oui[2]),
	}
	if name, ok := vendorOUINames[oui]; ok {
		tag["vendor"] = Document{"name": name}
	}
	st.wlanMgt["tag"] = tag

	if oui == [3]byte{0x00, 0x50, 0xf2} && vtype == 2 && len(body) >= 6 {
		subtype := body[4]
		version := body[5]
		wme := Document{"subtype": int(subtype), "version": int(version)}
		if len(body) >= 8 {
			qosInfo := body[6]
			wme["qos_info"] = Document{"ap": Document{
				"uapsd":               qosInfo&0x80 != 0,
				"parameter_set_count": int(qosInfo & 0x0F),
			}}
			// AC parameter records are optional; a short element may carry
			// fewer than the four records of a full WMM Parameter Element.
			if len(body) > 8 && len(body)%4 == 0 {
				var acps []any
				for i := 8; i+4 <= len(body); i += 4 {
					rec := body[i:]
					aciAifsn := rec[0]
					ecw := rec[1]
					txop := int(rec[2]) | int(rec[3])<<8
					acps = append(acps, Document{
						"aci":       int((aciAifsn >> 5) & 0x3),
						"acm":       aciAifsn&0x10 != 0,
						"aifsn":     int(aciAifsn & 0xF),
						"ecwmin":    int(ecw & 0xF),
						"ecwmax":    int((ecw >> 4) & 0xF),
						"txoplimit": txop,
					})
				}
				wme["acp"] = Document{"acp": acps}
			}
		}
		st.wlanMgt["wfa"] = Document{"ie": Document{"wme": wme}}
	}
}
