// Package capture holds the radio/link-layer primitives the pipeline
// consumes as capabilities: packet sources, the channel control, the pcap
// file writer, and the bulk sink toward the document indexer.
package capture

import "fmt"

// HTMode selects the channel width/offset applied with a channel change.
type HTMode int

const (
	HTModeNone HTMode = iota
	HTMode20
	HTMode40Plus
	HTMode40Minus
)

// ParseHTMode maps the configuration spelling to an HTMode.
func ParseHTMode(s string) (HTMode, error) {
	switch s {
	case "", "none":
		return HTModeNone, nil
	case "HT20":
		return HTMode20, nil
	case "HT40+":
		return HTMode40Plus, nil
	case "HT40-":
		return HTMode40Minus, nil
	default:
		return HTModeNone, fmt.Errorf("unknown ht mode %q", s)
	}
}

// ChannelToFrequency converts an 802.11 channel number to its center
// frequency in MHz. Channel 14 is the Japan-only 2484MHz special case;
// channels 183 and up sit in the 4.9GHz public-safety band.
func ChannelToFrequency(channel int) (int, error) {
	switch {
	case channel <= 0:
		return 0, fmt.Errorf("invalid channel %d", channel)
	case channel < 14:
		return 2407 + channel*5, nil
	case channel == 14:
		return 2484, nil
	case channel >= 183:
		return 4000 + channel*5, nil
	default:
		return (channel + 1000) * 5, nil
	}
}
