package capture

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"
)

// CompileFilter compiles a BPF expression against the radiotap link type
// and returns the raw instruction form. The topology builder uses it to
// reject a bad per-interface filter before any sniffer is opened.
func CompileFilter(filter string) ([]bpf.RawInstruction, error) {
	pcapBPF, err := pcap.CompileBPFFilter(layers.LinkTypeIEEE80211Radio, 65536, filter)
	if err != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", filter, err)
	}
	raw := make([]bpf.RawInstruction, len(pcapBPF))
	for i, inst := range pcapBPF {
		raw[i] = bpf.RawInstruction{
			Op: inst.Code,
			Jt: inst.Jt,
			Jf: inst.Jf,
			K:  inst.K,
		}
	}
	return raw, nil
}
