package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelToFrequency(t *testing.T) {
	tests := []struct {
		channel int
		want    int
	}{
		{1, 2412},
		{6, 2437},
		{11, 2462},
		{13, 2472},
		{14, 2484},
		{36, 5180},
		{165, 5825},
	}
	for _, tt := range tests {
		got, err := ChannelToFrequency(tt.channel)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "channel %d", tt.channel)
	}

	_, err := ChannelToFrequency(0)
	assert.Error(t, err)
	_, err = ChannelToFrequency(-3)
	assert.Error(t, err)
}

func TestParseHTMode(t *testing.T) {
	for s, want := range map[string]HTMode{
		"":      HTModeNone,
		"none":  HTModeNone,
		"HT20":  HTMode20,
		"HT40+": HTMode40Plus,
		"HT40-": HTMode40Minus,
	} {
		got, err := ParseHTMode(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseHTMode("VHT80")
	assert.Error(t, err)
}

func TestWriterFilename(t *testing.T) {
	ts := time.Date(2017, time.March, 5, 9, 7, 2, 0, time.Local)
	got := WriterFilename("/tmp/cap", "wlan0", ts)
	assert.Equal(t, "/tmp/cap-wlan0_2017-3-5_9.7.2.pcap", got)
}
