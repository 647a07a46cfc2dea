package stages

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/skyseer/wifibeat/internal/beat"
	"github.com/skyseer/wifibeat/internal/capture"
	"github.com/skyseer/wifibeat/internal/config"
	"github.com/skyseer/wifibeat/internal/core"
	"github.com/skyseer/wifibeat/internal/metrics"
	"github.com/skyseer/wifibeat/internal/parser"
	"github.com/skyseer/wifibeat/internal/stage"
)

// IndexBasename is the unsuffixed index every bulk request targets.
const IndexBasename = "wifibeat"

// SinkOpener opens the bulk sink for one host. Tests substitute an
// in-memory sink.
type SinkOpener func(host string) (capture.BulkSink, error)

// Indexer parses drained frames into documents, stamps the beat envelope,
// and ships them in bulk to the first healthy endpoint. A chunk that every
// endpoint rejects is logged and lost; there is no retry across ticks.
type Indexer struct {
	cfg  config.ElasticsearchConfig
	env  beat.Envelope
	open SinkOpener

	sinks []capture.BulkSink
}

func NewIndexer(cfg config.ElasticsearchConfig, env beat.Envelope) *Indexer {
	return &Indexer{
		cfg: cfg,
		env: env,
		open: func(host string) (capture.BulkSink, error) {
			return capture.NewESClient(host, cfg.Protocol, cfg.Username, cfg.Password)
		},
	}
}

// NewIndexerWithOpener is the test seam.
func NewIndexerWithOpener(cfg config.ElasticsearchConfig, env beat.Envelope, open SinkOpener) *Indexer {
	return &Indexer{cfg: cfg, env: env, open: open}
}

func (ix *Indexer) Describe() string { return "indexer" }

// Init opens a long-lived client per configured host. Unreachable hosts
// are logged and skipped; init fails only when no host could be opened.
func (ix *Indexer) Init() error {
	if !ix.cfg.Enabled {
		return nil
	}
	ix.sinks = ix.sinks[:0]
	var lastErr error
	for _, host := range ix.cfg.Hosts {
		sink, err := ix.open(host)
		if err != nil {
			slog.Warn("skipping unreachable indexer endpoint", "host", host, "error", err)
			lastErr = err
			continue
		}
		ix.sinks = append(ix.sinks, sink)
	}
	if len(ix.sinks) == 0 {
		if lastErr != nil {
			return fmt.Errorf("%w: %v", core.ErrNoReachableIndexer, lastErr)
		}
		return core.ErrNoReachableIndexer
	}
	return nil
}

func (ix *Indexer) Recurring(rt *stage.Stage) error {
	handles := rt.Drain()
	if len(handles) == 0 {
		return nil
	}
	if !ix.cfg.Enabled {
		metrics.PacketsDropped.WithLabelValues(rt.Name(), "disabled").Add(float64(len(handles)))
		return nil
	}

	docs := make([]string, 0, len(handles))
	for _, h := range handles {
		doc, err := parser.Parse(h)
		if err != nil {
			metrics.PacketsDropped.WithLabelValues(rt.Name(), "parser").Inc()
			rt.Log().Debug("dropping unparseable frame", "error", err)
			continue
		}
		doc["beat"] = ix.env
		b, err := json.Marshal(doc)
		if err != nil {
			metrics.PacketsDropped.WithLabelValues(rt.Name(), "marshal").Inc()
			rt.Log().Debug("dropping unserializable document", "error", err)
			continue
		}
		docs = append(docs, string(b))
	}

	max := ix.cfg.BulkMaxSize
	if max <= 0 {
		max = len(docs)
	}
	for start := 0; start < len(docs); start += max {
		end := start + max
		if end > len(docs) {
			end = len(docs)
		}
		ix.shipChunk(rt, docs[start:end])
	}
	return nil
}

// shipChunk tries each endpoint in order, stopping at the first success. A
// chunk every endpoint rejects is lost.
func (ix *Indexer) shipChunk(rt *stage.Stage, chunk []string) {
	for _, sink := range ix.sinks {
		err := sink.BulkInsert(chunk, IndexBasename)
		if err == nil {
			metrics.IndexerBatchSize.WithLabelValues(sink.Endpoint()).Observe(float64(len(chunk)))
			return
		}
		metrics.IndexerErrorsTotal.WithLabelValues(sink.Endpoint()).Inc()
		rt.Log().Warn("bulk insert failed", "endpoint", sink.Endpoint(), "error", err)
	}
	rt.Log().Error("dropping chunk, no endpoint accepted it", "documents", len(chunk))
}

func (ix *Indexer) Close() {
	for _, s := range ix.sinks {
		s.Close()
	}
	ix.sinks = nil
}
