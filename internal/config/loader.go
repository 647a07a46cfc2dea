package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ApplyPCAPPrefixOverride implements the `-a/--pcap-prefix` CLI flag,
// which overrides `wifibeat.output.pcap.prefix` when non-empty.
func (s *Settings) ApplyPCAPPrefixOverride(prefix string) {
	if prefix == "" {
		return
	}
	s.Output.PCAP.Prefix = prefix
	s.Output.PCAP.Enabled = true
}

// Dump renders Settings for `-d/--dump-config` as YAML keyed by the
// lowercased Settings field names. This is not the settings file's layout:
// files, interfaces and pcap are not nested under `wifibeat`, and
// multi-word keys such as max_size appear as maxsize.
func Dump(s *Settings) (string, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	return string(b), nil
}
