package topology

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/skyseer/wifibeat/internal/beat"
	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/config"
	"github.com/skyseer/wifibeat/internal/stage"
	"github.com/skyseer/wifibeat/internal/stages"
)

// Options carries the capability implementations the stages consume. Any
// nil field falls back to the real one; tests substitute fakes.
type Options struct {
	ChannelControl capture.ChannelControl
	OpenSink       stages.SinkOpener
	OpenLive       func(iface, filter string) (capture.PacketSource, error)
	OpenFile       func(path string) (capture.PacketSource, error)
	Log            *slog.Logger
}

// Build constructs and wires the stage graph from the settings:
//
//  1. one file reader per input file;
//  2. one capture per hopping interface, plus one file writer per capture
//     when a pcap prefix is configured;
//  3. one hopper per hopping interface;
//  4. one persistence stage, always;
//  5. one decryption stage when at least one key is configured;
//  6. one indexer stage per configured output.
//
// File-reader output bypasses persistence (files are already durable);
// captures feed the file writer when present, persistence otherwise; the
// decryption stage, when present, sits between persistence/file-readers and
// the indexers.
func Build(s *config.Settings, env beat.Envelope, opts Options) (*Topology, error) {
	t := &Topology{}
	log := opts.Log

	if len(s.Output.Elasticsearch.Hosts) == 0 {
		return nil, fmt.Errorf("no indexer output configured")
	}

	// Indexers.
	var ix *stages.Indexer
	if opts.OpenSink != nil {
		ix = stages.NewIndexerWithOpener(s.Output.Elasticsearch, env, opts.OpenSink)
	} else {
		ix = stages.NewIndexer(s.Output.Elasticsearch, env)
	}
	ixStage := stage.New("indexer", ix, log)
	t.indexers = append(t.indexers, ixStage)
	t.closers = append(t.closers, ix.Close)

	// Decryption.
	keys, err := s.DecryptionKeys()
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		t.decryption = stage.New("decryption", stages.NewDecryption(keys), log)
	}

	// Persistence.
	t.persistence = stage.New("persistence", stages.NewPersistence(), log)

	// Hoppers, captures, file writers. Interfaces are walked in sorted
	// order so the topology is deterministic for a given configuration.
	plans, err := s.ChannelPlans()
	if err != nil {
		return nil, err
	}
	ifaces := make([]string, 0, len(plans))
	for iface := range plans {
		ifaces = append(ifaces, iface)
	}
	sort.Strings(ifaces)

	// Filters are compiled up front so a bad expression is config-fatal
	// instead of surfacing later as a per-stage init failure.
	for iface, filter := range s.Interfaces.Filters {
		if filter == "" {
			continue
		}
		if _, err := capture.CompileFilter(filter); err != nil {
			return nil, fmt.Errorf("filter for %s: %w", iface, err)
		}
	}

	cc := opts.ChannelControl
	if cc == nil && len(ifaces) > 0 {
		nl, err := capture.NewNL80211()
		if err != nil {
			return nil, fmt.Errorf("opening nl80211: %w", err)
		}
		cc = nl
		t.closers = append(t.closers, func() { nl.Close() })
	}

	writerPrefix := ""
	if s.Output.PCAP.Enabled && s.Output.PCAP.Prefix != "" {
		writerPrefix = s.Output.PCAP.Prefix
	}

	for i, iface := range ifaces {
		t.hoppers = append(t.hoppers,
			stage.New("hopper-"+iface, stages.NewHopper(iface, plans[iface], cc), log))

		var capt *stages.Capture
		if opts.OpenLive != nil {
			iface := iface
			filter := s.Interfaces.Filters[iface]
			capt = stages.NewCaptureWithOpener(iface, i, func() (capture.PacketSource, error) {
				return opts.OpenLive(iface, filter)
			})
		} else {
			capt = stages.NewCapture(iface, s.Interfaces.Filters[iface], i)
		}
		capStage := stage.New("capture-"+iface, capt, log)
		t.captures = append(t.captures, capStage)
		t.closers = append(t.closers, capt.Close)

		if writerPrefix != "" {
			fw := stages.NewFileWriter(writerPrefix, iface)
			fwStage := stage.New("filewriter-"+iface, fw, log)
			t.fileWriters = append(t.fileWriters, fwStage)
			t.closers = append(t.closers, fw.Close)
			capStage.AddDownstream(fwStage)
			fwStage.AddDownstream(t.persistence)
		} else {
			capStage.AddDownstream(t.persistence)
		}
	}

	// File readers.
	for _, path := range s.Files {
		var fr *stages.FileReader
		if opts.OpenFile != nil {
			path := path
			fr = stages.NewFileReaderWithOpener(path, func() (capture.PacketSource, error) {
				return opts.OpenFile(path)
			})
		} else {
			fr = stages.NewFileReader(path)
		}
		frStage := stage.New("filereader-"+path, fr, log)
		t.fileReaders = append(t.fileReaders, frStage)
		t.closers = append(t.closers, fr.Close)
	}

	// Terminal wiring: everything funnels into decryption when it exists,
	// straight into the indexers otherwise.
	if t.decryption != nil {
		for _, fr := range t.fileReaders {
			fr.AddDownstream(t.decryption)
		}
		t.persistence.AddDownstream(t.decryption)
		for _, ixs := range t.indexers {
			t.decryption.AddDownstream(ixs)
		}
	} else {
		for _, fr := range t.fileReaders {
			for _, ixs := range t.indexers {
				fr.AddDownstream(ixs)
			}
		}
		for _, ixs := range t.indexers {
			t.persistence.AddDownstream(ixs)
		}
	}

	return t, nil
}
