package capture

// ChannelControl is the capability the hopper stage consumes: channel to
// frequency conversion plus the netlink channel set. The pipeline core never
// talks nl80211 directly.
type ChannelControl interface {
	// ChannelToFreq converts a channel number to its center frequency in
	// MHz, failing on channels outside any known band.
	ChannelToFreq(channel int) (int, error)
	// Set tunes iface to freqMHz with the given HT mode.
	Set(iface string, freqMHz int, mode HTMode) error
}
