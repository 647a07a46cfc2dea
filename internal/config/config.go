// Package config loads the wifibeat.yml settings file using viper and
// produces a read-only Settings value. There is no global configuration
// state: the value is handed to the topology builder explicitly.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

var bssidPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// channelTokenPattern is the accepted channel grammar: a channel number,
// optionally followed by ":<dwell><unit>" with unit ms or s. Anything
// else is a configuration error rather than a silent single-channel
// fallback.
var channelTokenPattern = regexp.MustCompile(`^\d+(:\d+(ms|s))?$`)

// Settings is the read-only configuration consumed by the topology builder.
type Settings struct {
	Files      []string         `mapstructure:"-"`
	Queues     QueuesConfig     `mapstructure:"queues"`
	Output     OutputConfig     `mapstructure:"output"`
	Interfaces InterfacesConfig `mapstructure:"interfaces"`
	Decryption DecryptionConfig `mapstructure:"decryption"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// QueuesConfig mirrors `queues.persistent.*`.
type QueuesConfig struct {
	Persistent PersistentQueueConfig `mapstructure:"persistent"`
}

// PersistentQueueConfig mirrors `queues.persistent.{enabled,max_size,directory}`.
type PersistentQueueConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	MaxSize   uint64 `mapstructure:"max_size"`
	Directory string `mapstructure:"directory"`
}

// OutputConfig mirrors `output.*` and `wifibeat.output.*`.
type OutputConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	PCAP          PCAPConfig          `mapstructure:"pcap"`
}

// ElasticsearchConfig mirrors `output.elasticsearch.*`.
type ElasticsearchConfig struct {
	Protocol string   `mapstructure:"protocol"` // http|https (https rejected)
	Hosts    []string `mapstructure:"hosts"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	Enabled  bool     `mapstructure:"enabled"`
	// BulkMaxSize bounds the indexer stage's per-request chunk size.
	BulkMaxSize int `mapstructure:"bulk_max_size"`
}

// PCAPConfig mirrors `wifibeat.output.pcap.*`.
type PCAPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

// InterfacesConfig mirrors `wifibeat.interfaces.*`.
type InterfacesConfig struct {
	Devices map[string][]string `mapstructure:"devices"`
	Filters map[string]string   `mapstructure:"filters"`
}

// DecryptionConfig mirrors `decryption.keys.*`.
type DecryptionConfig struct {
	Keys map[string]string `mapstructure:"keys"` // essid: "bssid/passphrase"
}

// LoggingConfig mirrors `logging.*`. File is optional; when set, log
// output is additionally written there with size rotation.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DecryptionKey is the parsed form of one `decryption.keys` entry.
type DecryptionKey struct {
	ESSID      string
	BSSID      string
	Passphrase string
}

// ChannelEntry is one element of a ChannelPlan.
type ChannelEntry struct {
	Channel int
	DwellMS int
	HTMode  string // none|HT20|HT40+|HT40-
}

// ChannelPlan is the ordered, non-empty, cyclic channel list for one
// interface.
type ChannelPlan struct {
	Interface string
	Entries   []ChannelEntry
}

// innerRoot captures the sections (files, interfaces, output.pcap) that live
// under the `wifibeat:` key in the YAML file, alongside the sibling `queues:`,
// `output:`, `decryption:`, and `logging:` keys that are not nested under it.
type innerRoot struct {
	Files      string           `mapstructure:"files"`
	Interfaces InterfacesConfig `mapstructure:"interfaces"`
	Output     innerOutput      `mapstructure:"output"`
}

// innerOutput matches `wifibeat.output.pcap.*`.
type innerOutput struct {
	PCAP PCAPConfig `mapstructure:"pcap"`
}

type fullRoot struct {
	WiFiBeat   innerRoot         `mapstructure:"wifibeat"`
	Queues     QueuesConfig      `mapstructure:"queues"`
	Output     ElasticsearchRoot `mapstructure:"output"`
	Decryption DecryptionConfig  `mapstructure:"decryption"`
	Logging    LoggingConfig     `mapstructure:"logging"`
}

// ElasticsearchRoot matches the top-level `output.elasticsearch` key,
// distinct from `wifibeat.output.pcap`.
type ElasticsearchRoot struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

// Load reads path, applies defaults, validates, and returns a Settings.
// Every failure here is config-fatal: the caller must exit 1.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// queues.persistent.enabled is checked ahead of Unmarshal so a
	// non-boolean value (e.g. the string "maybe") produces the exact
	// validation message operators know, instead of a generic mapstructure
	// decode error.
	if raw := v.Get("queues.persistent.enabled"); raw != nil {
		if _, ok := raw.(bool); !ok {
			return nil, fmt.Errorf("queues.persistent.enabled: value is invalid. Must be true or false.")
		}
	}

	var root fullRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	s := &Settings{
		Files:      splitFiles(root.WiFiBeat.Files),
		Queues:     root.Queues,
		Output:     OutputConfig{Elasticsearch: root.Output.Elasticsearch, PCAP: root.WiFiBeat.Output.PCAP},
		Interfaces: root.WiFiBeat.Interfaces,
		Decryption: root.Decryption,
		Logging:    root.Logging,
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("queues.persistent.enabled", false)
	v.SetDefault("queues.persistent.max_size", 0)
	v.SetDefault("output.elasticsearch.protocol", "http")
	v.SetDefault("output.elasticsearch.enabled", true)
	v.SetDefault("output.elasticsearch.bulk_max_size", 50)
	v.SetDefault("wifibeat.output.pcap.enabled", false)
	v.SetDefault("logging.level", "info")
}

// splitFiles implements `wifibeat.files`: a space-separated token list with
// `#`-prefixed tokens ignored.
func splitFiles(raw string) []string {
	var out []string
	for _, tok := range strings.Fields(raw) {
		if strings.HasPrefix(tok, "#") {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// validate enforces the config-fatal rules.
func (s *Settings) validate() error {
	if s.Output.Elasticsearch.Protocol == "https" {
		return fmt.Errorf("output.elasticsearch.protocol: https is not supported in this release")
	}
	switch s.Logging.Level {
	case "debug", "info", "notice", "warning", "warn", "error", "critical", "alert":
	default:
		return fmt.Errorf("logging.level: unrecognized level %q", s.Logging.Level)
	}
	if _, err := s.DecryptionKeys(); err != nil {
		return err
	}
	if _, err := s.ChannelPlans(); err != nil {
		return err
	}
	return nil
}

// DecryptionKeys parses `decryption.keys` into DecryptionKey values,
// validating each BSSID against the MAC regex.
func (s *Settings) DecryptionKeys() ([]DecryptionKey, error) {
	var out []DecryptionKey
	for essid, v := range s.Decryption.Keys {
		bssid, pass, ok := strings.Cut(v, "/")
		if !ok {
			return nil, fmt.Errorf("decryption.keys.%s: expected \"bssid/passphrase\", got %q", essid, v)
		}
		if !bssidPattern.MatchString(bssid) {
			return nil, fmt.Errorf("decryption.keys.%s: bssid %q is invalid. Must match xx:xx:xx:xx:xx:xx.", essid, bssid)
		}
		out = append(out, DecryptionKey{ESSID: essid, BSSID: strings.ToLower(bssid), Passphrase: pass})
	}
	return out, nil
}

// ChannelPlans parses `wifibeat.interfaces.devices` into per-interface
// ChannelPlan values.
func (s *Settings) ChannelPlans() (map[string]ChannelPlan, error) {
	out := make(map[string]ChannelPlan, len(s.Interfaces.Devices))
	for iface, tokens := range s.Interfaces.Devices {
		if len(tokens) == 0 {
			return nil, fmt.Errorf("wifibeat.interfaces.devices.%s: must list at least one channel", iface)
		}
		plan := ChannelPlan{Interface: iface}
		defaultDwell := 700
		for _, tok := range tokens {
			entry, err := parseChannelToken(tok, defaultDwell)
			if err != nil {
				return nil, fmt.Errorf("wifibeat.interfaces.devices.%s: %w", iface, err)
			}
			plan.Entries = append(plan.Entries, entry)
		}
		out[iface] = plan
	}
	return out, nil
}

// parseChannelToken accepts "chan", "chan:Nms" or "chan:Ns" and rejects
// anything else, converting seconds to milliseconds.
func parseChannelToken(tok string, defaultDwellMS int) (ChannelEntry, error) {
	if !channelTokenPattern.MatchString(tok) {
		return ChannelEntry{}, fmt.Errorf("channel token %q does not match ^\\d+(:\\d+(ms|s))?$", tok)
	}
	chanPart, dwellPart, hasDwell := strings.Cut(tok, ":")
	channel, err := strconv.Atoi(chanPart)
	if err != nil {
		return ChannelEntry{}, fmt.Errorf("channel token %q: %w", tok, err)
	}
	dwell := defaultDwellMS
	if hasDwell {
		switch {
		case strings.HasSuffix(dwellPart, "ms"):
			n, err := strconv.Atoi(strings.TrimSuffix(dwellPart, "ms"))
			if err != nil {
				return ChannelEntry{}, fmt.Errorf("channel token %q: %w", tok, err)
			}
			dwell = n
		case strings.HasSuffix(dwellPart, "s"):
			n, err := strconv.Atoi(strings.TrimSuffix(dwellPart, "s"))
			if err != nil {
				return ChannelEntry{}, fmt.Errorf("channel token %q: %w", tok, err)
			}
			dwell = n * 1000
		}
	}
	return ChannelEntry{Channel: channel, DwellMS: dwell}, nil
}
