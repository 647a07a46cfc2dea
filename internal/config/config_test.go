package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "wifibeat.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
wifibeat:
  files: a.pcap b.pcap #ignored.pcap
  interfaces:
    devices:
      wlan0:
        - "1:300ms"
        - "6:300ms"
    filters:
      wlan0: "type mgt"
output:
  elasticsearch:
    protocol: http
    hosts: ["localhost:9200"]
    enabled: true
decryption:
  keys:
    myssid: "aa:bb:cc:dd:ee:ff/abcdefgh"
logging:
  level: info
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pcap", "b.pcap"}, s.Files)

	plans, err := s.ChannelPlans()
	require.NoError(t, err)
	assert.Len(t, plans["wlan0"].Entries, 2)
	assert.Equal(t, 300, plans["wlan0"].Entries[0].DwellMS)

	keys, err := s.DecryptionKeys()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", keys[0].BSSID)
}

func TestLoadRejectsHTTPS(t *testing.T) {
	path := writeConfig(t, `
output:
  elasticsearch:
    protocol: https
    hosts: ["localhost:9200"]
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidPersistentEnabled(t *testing.T) {
	// A non-boolean value must fail with the exact historical message text
	// operators grep their logs for.
	path := writeConfig(t, `
queues:
  persistent:
    enabled: maybe
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value is invalid. Must be true or false.")
}

func TestChannelTokenGrammar(t *testing.T) {
	cases := []struct {
		token   string
		wantErr bool
		dwellMS int
	}{
		{"1", false, 700},
		{"6:300ms", false, 300},
		{"11:2s", false, 2000},
		{"1:abc", true, 0},
		{"", true, 0},
		{"1:300", true, 0},
	}
	for _, c := range cases {
		entry, err := parseChannelToken(c.token, 700)
		if c.wantErr {
			assert.Error(t, err, c.token)
			continue
		}
		require.NoError(t, err, c.token)
		assert.Equal(t, c.dwellMS, entry.DwellMS, c.token)
	}
}

func TestBadBSSIDRejected(t *testing.T) {
	path := writeConfig(t, `
decryption:
  keys:
    myssid: "not-a-mac/abcdefgh"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is invalid")
}
