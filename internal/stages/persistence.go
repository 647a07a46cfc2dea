package stages

import (
	"github.com/skyseer/wifibeat/internal/metrics"
	"github.com/skyseer/wifibeat/internal/stage"
)

// Persistence is a pure forwarder reserved for a future durable queue. It
// must not reorder, deduplicate, or drop: the wiring contract is stable
// even though the behavior is a pass-through in this release.
type Persistence struct{}

func NewPersistence() *Persistence { return &Persistence{} }

func (p *Persistence) Describe() string { return "persistence" }

func (p *Persistence) Init() error { return nil }

func (p *Persistence) Recurring(rt *stage.Stage) error {
	for _, h := range rt.Drain() {
		if err := rt.SendDownstream(h); err != nil {
			metrics.PacketsDropped.WithLabelValues(rt.Name(), "fanout").Inc()
			rt.Log().Debug("dropping frame", "error", err)
			continue
		}
		metrics.PacketsOut.WithLabelValues(rt.Name()).Inc()
	}
	return nil
}
