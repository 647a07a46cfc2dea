package stages

import (
	"fmt"

	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/config"
	"github.com/skyseer/wifibeat/internal/metrics"
	"github.com/skyseer/wifibeat/internal/stage"
)

// Hopper cycles one interface through its channel plan. It uses no queues:
// the stage runtime drives it as a tick-driven actor, one tick per
// millisecond by default, so the per-entry countdown is measured in ticks.
type Hopper struct {
	iface  string
	plan   config.ChannelPlan
	cc     capture.ChannelControl
	freqs  []int
	modes  []capture.HTMode
	pos    int
	remain int
}

func NewHopper(iface string, plan config.ChannelPlan, cc capture.ChannelControl) *Hopper {
	return &Hopper{iface: iface, plan: plan, cc: cc}
}

func (h *Hopper) Describe() string { return fmt.Sprintf("hopper[%s]", h.iface) }

// Init precomputes each entry's frequency so the per-tick path never does a
// table lookup; an invalid channel fails init.
func (h *Hopper) Init() error {
	if len(h.plan.Entries) == 0 {
		return fmt.Errorf("channel plan for %s is empty", h.iface)
	}
	h.freqs = make([]int, len(h.plan.Entries))
	h.modes = make([]capture.HTMode, len(h.plan.Entries))
	for i, e := range h.plan.Entries {
		freq, err := h.cc.ChannelToFreq(e.Channel)
		if err != nil {
			return fmt.Errorf("channel %d on %s: %w", e.Channel, h.iface, err)
		}
		mode, err := capture.ParseHTMode(e.HTMode)
		if err != nil {
			return fmt.Errorf("channel %d on %s: %w", e.Channel, h.iface, err)
		}
		h.freqs[i] = freq
		h.modes[i] = mode
	}
	h.pos = 0
	h.remain = h.plan.Entries[0].DwellMS
	return nil
}

func (h *Hopper) Recurring(rt *stage.Stage) error {
	if len(h.plan.Entries) == 1 {
		return nil
	}
	if h.remain > 0 {
		h.remain--
		return nil
	}
	if err := h.cc.Set(h.iface, h.freqs[h.pos], h.modes[h.pos]); err != nil {
		rt.Log().Warn("channel change failed", "interface", h.iface, "freq", h.freqs[h.pos], "error", err)
	} else {
		metrics.ChannelChanges.WithLabelValues(h.iface).Inc()
	}
	h.pos = (h.pos + 1) % len(h.plan.Entries)
	h.remain = h.plan.Entries[h.pos].DwellMS
	return nil
}
