package topology

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyseer/wifibeat/internal/beat"
	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/config"
	"github.com/skyseer/wifibeat/internal/stage"
)

type memorySource struct {
	mu     sync.Mutex
	frames [][]byte
	pos    int
}

func (m *memorySource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos >= len(m.frames) {
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
	f := m.frames[m.pos]
	m.pos++
	return f, gopacket.CaptureInfo{Timestamp: time.Now(), CaptureLength: len(f), Length: len(f)}, nil
}

func (m *memorySource) LinkType() layers.LinkType { return layers.LinkTypeIEEE80211Radio }
func (m *memorySource) Close()                    {}

type recordingSink struct {
	mu   sync.Mutex
	docs []string
}

func (r *recordingSink) BulkInsert(docs []string, index string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, docs...)
	return nil
}

func (r *recordingSink) Endpoint() string { return "mock" }
func (r *recordingSink) Close()           {}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func beaconFrame() []byte {
	frame := []byte{0, 0, 8, 0, 0, 0, 0, 0}
	hdr := make([]byte, 24)
	hdr[0] = 0x80
	for i := 4; i < 10; i++ {
		hdr[i] = 0xff
	}
	copy(hdr[10:16], []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
	copy(hdr[16:22], []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
	frame = append(frame, hdr...)
	fixed := make([]byte, 12)
	binary.LittleEndian.PutUint16(fixed[8:10], 100)
	frame = append(frame, fixed...)
	frame = append(frame, 0, 4, 'c', 'o', 'r', 'p')
	return frame
}

func fileOnlySettings() *config.Settings {
	return &config.Settings{
		Files: []string{"a.pcap"},
		Output: config.OutputConfig{
			Elasticsearch: config.ElasticsearchConfig{
				Protocol:    "http",
				Hosts:       []string{"localhost:9200"},
				Enabled:     true,
				BulkMaxSize: 50,
			},
		},
	}
}

// The S1 scenario: one file of three beacons, no captures, no keys, one
// indexer. Every frame must come out the far end exactly once.
func TestFilePipelineEndToEnd(t *testing.T) {
	sink := &recordingSink{}
	src := &memorySource{frames: [][]byte{beaconFrame(), beaconFrame(), beaconFrame()}}

	tp, err := Build(fileOnlySettings(), beat.Envelope{Hostname: "h", Name: "h", Version: "dev"}, Options{
		OpenSink: func(host string) (capture.BulkSink, error) { return sink, nil },
		OpenFile: func(path string) (capture.PacketSource, error) { return src, nil },
	})
	require.NoError(t, err)
	require.NoError(t, tp.Init())
	require.NoError(t, tp.Start())

	deadline := time.Now().Add(5 * time.Second)
	for !tp.CanStop() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, tp.CanStop(), "file reader must finish on its own")

	tp.Stop()
	tp.Kill(time.Second)

	require.Equal(t, 3, sink.count())
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(sink.docs[0]), &doc))
	wlan := doc["wlan"].(map[string]any)
	fc := wlan["fc"].(map[string]any)
	assert.Equal(t, "Beacon", fc["type_subtype"])
	assert.NotEmpty(t, doc["@timestamp"])
	assert.NotContains(t, doc, "wep")
	assert.NotContains(t, doc, "tkip")
	assert.NotContains(t, doc, "ccmp")
	assert.NotContains(t, doc, "data")

	for _, s := range tp.Stages() {
		assert.True(t, Drained(s), "stage %s must be drained after teardown", s.Name())
	}
}

// With a decryption key configured the file reader must route through the
// decryption stage and documents still arrive.
func TestFilePipelineWithDecryption(t *testing.T) {
	sink := &recordingSink{}
	src := &memorySource{frames: [][]byte{beaconFrame()}}

	settings := fileOnlySettings()
	settings.Decryption = config.DecryptionConfig{
		Keys: map[string]string{"corp": "aa:bb:cc:dd:ee:ff/password123"},
	}

	tp, err := Build(settings, beat.Envelope{}, Options{
		OpenSink: func(host string) (capture.BulkSink, error) { return sink, nil },
		OpenFile: func(path string) (capture.PacketSource, error) { return src, nil },
	})
	require.NoError(t, err)
	require.NotNil(t, tp.decryption, "a configured key must insert the decryption stage")
	require.NoError(t, tp.Init())
	require.NoError(t, tp.Start())

	deadline := time.Now().Add(5 * time.Second)
	for sink.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	tp.Stop()
	tp.Kill(time.Second)
	assert.Equal(t, 1, sink.count())
}

func TestBuildRequiresIndexer(t *testing.T) {
	s := fileOnlySettings()
	s.Output.Elasticsearch.Hosts = nil
	_, err := Build(s, beat.Envelope{}, Options{})
	assert.Error(t, err)
}

func TestBuildFailsOnBadDecryptionKey(t *testing.T) {
	s := fileOnlySettings()
	s.Decryption = config.DecryptionConfig{Keys: map[string]string{"corp": "garbage"}}
	_, err := Build(s, beat.Envelope{}, Options{})
	assert.Error(t, err)
}

func TestInitFailureAborts(t *testing.T) {
	s := fileOnlySettings()
	tp, err := Build(s, beat.Envelope{}, Options{
		OpenSink: func(host string) (capture.BulkSink, error) { return nil, errors.New("connection refused") },
		OpenFile: func(path string) (capture.PacketSource, error) { return &memorySource{}, nil },
	})
	require.NoError(t, err)
	assert.Error(t, tp.Init(), "an unreachable indexer set is init-fatal")
}

func TestCanStopFalseWhileSourcesRun(t *testing.T) {
	tp := &Topology{}
	assert.False(t, tp.CanStop(), "a topology with no sources never self-stops")

	b := stage.New("src", nopBehavior{}, nil)
	tp.fileReaders = append(tp.fileReaders, b)
	assert.True(t, tp.CanStop(), "a Created source is not running")
	require.NoError(t, b.Init(time.Millisecond))
	require.NoError(t, b.Start())
	deadline := time.Now().Add(time.Second)
	for b.Status() != stage.Running && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.False(t, tp.CanStop())
	require.NoError(t, b.Stop(false))
	<-b.Joined()
	assert.True(t, tp.CanStop())
}

type nopBehavior struct{}

func (nopBehavior) Init() error                  { return nil }
func (nopBehavior) Recurring(*stage.Stage) error { return nil }
func (nopBehavior) Describe() string             { return "nop" }
