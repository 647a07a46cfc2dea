package parser

// parseCapabilities decodes the 16-bit capability field. The `cf_poll.ap`
// bit is emitted raw, without semantic interpretation.
func parseCapabilities(v uint16) Document {
	bit := func(n uint) bool { return v&(1<<n) != 0 }
	d := Document{
		"ess":               bit(0),
		"ibss":              bit(1),
		"privacy":           bit(4),
		"preamble":          bit(5),
		"pbcc":              bit(6),
		"agility":           bit(7),
		"spec_man":          bit(8),
		"short_slot_time":   bit(10),
		"apsd":              bit(11),
		"radio_measurement": bit(12),
		"dsss_ofdm":         bit(13),
		"del_blk_ack":       bit(14),
		"imm_blk_ack":       bit(15),
	}
	d["cfpoll"] = Document{"ap": bit(2)}
	return d
}
