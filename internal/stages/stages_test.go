package stages

import (
	"io"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/config"
	"github.com/skyseer/wifibeat/internal/packet"
	"github.com/skyseer/wifibeat/internal/stage"
)

// memorySource replays a fixed frame list, then reports EOF.
type memorySource struct {
	frames [][]byte
	pos    int
	closed bool
}

func (m *memorySource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	if m.pos >= len(m.frames) {
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
	f := m.frames[m.pos]
	m.pos++
	return f, gopacket.CaptureInfo{Timestamp: time.Now(), CaptureLength: len(f), Length: len(f)}, nil
}

func (m *memorySource) LinkType() layers.LinkType { return layers.LinkTypeIEEE80211Radio }
func (m *memorySource) Close()                    { m.closed = true }

// fakeChannelControl records every Set call.
type fakeChannelControl struct {
	sets []int
}

func (f *fakeChannelControl) ChannelToFreq(channel int) (int, error) {
	return capture.ChannelToFrequency(channel)
}

func (f *fakeChannelControl) Set(iface string, freqMHz int, mode capture.HTMode) error {
	f.sets = append(f.sets, freqMHz)
	return nil
}

func TestPersistenceForwardsInOrder(t *testing.T) {
	p := stage.New("persistence", NewPersistence(), nil)
	sink := stage.New("sink", NewPersistence(), nil)
	p.AddDownstream(sink)
	require.NoError(t, p.Init(0))

	for i := 0; i < 3; i++ {
		p.Push(packet.New([]byte{byte(i)}, time.Now(), 0))
	}
	require.NoError(t, NewPersistence().Recurring(p))

	got := sink.Drain()
	require.Len(t, got, 3)
	for i, h := range got {
		assert.Equal(t, byte(i), h.Frame[0], "forwarding must preserve order")
	}
	assert.True(t, p.QueueEmpty())
}

func TestFileReaderStopsAtEOF(t *testing.T) {
	src := &memorySource{frames: [][]byte{{1}, {2}}}
	fr := NewFileReaderWithOpener("test.pcap", func() (capture.PacketSource, error) {
		return src, nil
	})
	s := stage.New("filereader", fr, nil)
	sink := stage.New("sink", NewPersistence(), nil)
	s.AddDownstream(sink)

	require.NoError(t, s.Init(time.Microsecond))
	require.NoError(t, s.Start())
	select {
	case <-s.Joined():
	case <-time.After(2 * time.Second):
		t.Fatal("file reader never stopped after EOF")
	}
	assert.Equal(t, stage.Stopped, s.Status())
	assert.Len(t, sink.Drain(), 2)
}

func TestFileReaderHandlesCarryFileIndex(t *testing.T) {
	src := &memorySource{frames: [][]byte{{1}}}
	fr := NewFileReaderWithOpener("test.pcap", func() (capture.PacketSource, error) {
		return src, nil
	})
	s := stage.New("filereader", fr, nil)
	sink := stage.New("sink", NewPersistence(), nil)
	s.AddDownstream(sink)
	require.NoError(t, s.Init(0))
	require.NoError(t, fr.Recurring(s))

	got := sink.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, FileIndex, got[0].InterfaceIndex)
	assert.False(t, got[0].Captured.IsZero())
}

func TestHopperCyclesChannels(t *testing.T) {
	cc := &fakeChannelControl{}
	plan := config.ChannelPlan{
		Interface: "wlan0",
		Entries: []config.ChannelEntry{
			{Channel: 1, DwellMS: 300},
			{Channel: 6, DwellMS: 300},
			{Channel: 11, DwellMS: 300},
		},
	}
	h := NewHopper("wlan0", plan, cc)
	s := stage.New("hopper", h, nil)
	require.NoError(t, s.Init(time.Millisecond))

	// With dwell 300 per entry and a 1ms tick the hopper changes channel
	// every 301 ticks: 300 countdown ticks plus the change itself.
	for i := 0; i < 1000; i++ {
		require.NoError(t, h.Recurring(s))
	}
	assert.Equal(t, []int{2412, 2437, 2462}, cc.sets)

	for i := 0; i < 1000; i++ {
		require.NoError(t, h.Recurring(s))
	}
	assert.Equal(t, []int{2412, 2437, 2462, 2412, 2437, 2462}, cc.sets[:6], "position must wrap at plan length")
}

func TestHopperSingleChannelNeverHops(t *testing.T) {
	cc := &fakeChannelControl{}
	plan := config.ChannelPlan{
		Interface: "wlan0",
		Entries:   []config.ChannelEntry{{Channel: 6, DwellMS: 100}},
	}
	h := NewHopper("wlan0", plan, cc)
	s := stage.New("hopper", h, nil)
	require.NoError(t, s.Init(time.Millisecond))
	for i := 0; i < 500; i++ {
		require.NoError(t, h.Recurring(s))
	}
	assert.Empty(t, cc.sets)
}

func TestHopperRejectsInvalidChannel(t *testing.T) {
	cc := &fakeChannelControl{}
	plan := config.ChannelPlan{
		Interface: "wlan0",
		Entries:   []config.ChannelEntry{{Channel: 0, DwellMS: 100}},
	}
	s := stage.New("hopper", NewHopper("wlan0", plan, cc), nil)
	assert.Error(t, s.Init(time.Millisecond))
	assert.Equal(t, stage.InitializationFailed, s.Status())
}

func TestDecryptionPassthroughWithoutKeys(t *testing.T) {
	d := NewDecryption(nil)
	s := stage.New("decryption", d, nil)
	sink := stage.New("sink", NewPersistence(), nil)
	s.AddDownstream(sink)
	require.NoError(t, s.Init(0))

	s.Push(packet.New([]byte{0xAB}, time.Now(), 0))
	require.NoError(t, d.Recurring(s))

	got := sink.Drain()
	require.Len(t, got, 1)
	assert.False(t, got[0].DecryptAttempted, "pass-through mode must not mark frames as attempted")
	assert.False(t, got[0].Decrypted)
}

func TestDecryptionMarksAttempts(t *testing.T) {
	d := NewDecryption([]config.DecryptionKey{
		{ESSID: "net", BSSID: "aa:bb:cc:dd:ee:ff", Passphrase: "password123"},
	})
	s := stage.New("decryption", d, nil)
	sink := stage.New("sink", NewPersistence(), nil)
	s.AddDownstream(sink)
	require.NoError(t, s.Init(0))

	s.Push(packet.New([]byte{0, 0, 8, 0, 0, 0, 0, 0, 0x80, 0x00}, time.Now(), 0))
	require.NoError(t, d.Recurring(s))

	got := sink.Drain()
	require.Len(t, got, 1)
	assert.True(t, got[0].DecryptAttempted)
	assert.False(t, got[0].Decrypted, "an undecryptable frame is still forwarded")
}

func TestDecryptionRejectsBadKey(t *testing.T) {
	d := NewDecryption([]config.DecryptionKey{
		{ESSID: "net", BSSID: "aa:bb:cc:dd:ee:ff", Passphrase: "short"},
	})
	s := stage.New("decryption", d, nil)
	assert.Error(t, s.Init(0))
	assert.Equal(t, stage.InitializationFailed, s.Status())
}
