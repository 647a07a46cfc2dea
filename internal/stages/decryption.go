package stages

import (
	"fmt"

	"github.com/skyseer/wifibeat/internal/config"
	"github.com/skyseer/wifibeat/internal/metrics"
	"github.com/skyseer/wifibeat/internal/stage"
	"github.com/skyseer/wifibeat/internal/wpa2"
)

// Decryption attempts in-place WPA2 decryption of protected data frames.
// With no keys configured the stage is a pass-through. Frames are forwarded
// regardless of decryption success; the handle's Decrypted flag tells
// downstreams which ones were recovered.
type Decryption struct {
	keys []config.DecryptionKey
	dec  *wpa2.Decrypter
}

func NewDecryption(keys []config.DecryptionKey) *Decryption {
	return &Decryption{keys: keys}
}

func (d *Decryption) Describe() string { return "decryption" }

func (d *Decryption) Init() error {
	dec := wpa2.New()
	for _, k := range d.keys {
		if err := dec.AddKey(k.ESSID, k.BSSID, k.Passphrase); err != nil {
			return fmt.Errorf("loading key for %s: %w", k.ESSID, err)
		}
	}
	d.dec = dec
	return nil
}

func (d *Decryption) Recurring(rt *stage.Stage) error {
	passthrough := !d.dec.HasKeys()
	for _, h := range rt.Drain() {
		if !passthrough {
			frame, ok := d.dec.Process(h.Frame)
			h.Frame = frame
			h.Decrypted = ok
			h.DecryptAttempted = true
		}
		if err := rt.SendDownstream(h); err != nil {
			metrics.PacketsDropped.WithLabelValues(rt.Name(), "fanout").Inc()
			rt.Log().Debug("dropping frame", "error", err)
			continue
		}
		metrics.PacketsOut.WithLabelValues(rt.Name()).Inc()
	}
	return nil
}
