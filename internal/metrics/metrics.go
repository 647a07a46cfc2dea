// Package metrics exposes Prometheus counters for stage throughput. The
// process does not serve them itself; an embedder can mount a handler on
// the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsIn counts handles accepted into a stage's input queue.
	PacketsIn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifibeat_stage_packets_in_total",
			Help: "Total packet handles accepted into a stage's input queue",
		},
		[]string{"stage"},
	)

	// PacketsOut counts handles successfully sent downstream.
	PacketsOut = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifibeat_stage_packets_out_total",
			Help: "Total packet handles forwarded downstream by a stage",
		},
		[]string{"stage"},
	)

	// PacketsDropped counts handles dropped by a full downstream queue or
	// parser rejection.
	PacketsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifibeat_stage_packets_dropped_total",
			Help: "Total packet handles dropped by a stage",
		},
		[]string{"stage", "reason"},
	)

	// StageStatus mirrors stage.Status as a gauge for scraping.
	StageStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wifibeat_stage_status",
			Help: "Current numeric lifecycle status of a stage",
		},
		[]string{"stage"},
	)

	// IndexerBatchSize tracks how many documents are shipped per bulk
	// request.
	IndexerBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wifibeat_indexer_batch_size",
			Help:    "Number of documents sent per indexer bulk request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"endpoint"},
	)

	// IndexerErrorsTotal counts failed bulk-insert attempts by endpoint.
	IndexerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifibeat_indexer_errors_total",
			Help: "Total failed bulk-insert attempts",
		},
		[]string{"endpoint"},
	)

	// ChannelChanges counts channel-set operations issued by the hopper.
	ChannelChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifibeat_hopper_channel_changes_total",
			Help: "Total channel changes issued by the hopper stage",
		},
		[]string{"interface"},
	)
)
