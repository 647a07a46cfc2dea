// Package core defines sentinel errors shared across the pipeline.
package core

import "errors"

// Sentinel errors, wrapped with %w at the point of detection.
var (
	// Configuration errors; all of these are fatal at load.
	ErrConfigInvalid    = errors.New("wifibeat: invalid configuration")
	ErrBadBSSID         = errors.New("wifibeat: bssid does not match required format")
	ErrBadChannelToken  = errors.New("wifibeat: channel token does not match required grammar")
	ErrUnsupportedProto = errors.New("wifibeat: unsupported indexer protocol")

	// Stage lifecycle errors.
	ErrStageNotInitializable = errors.New("wifibeat: stage cannot be initialized from its current state")
	ErrStageNotStartable     = errors.New("wifibeat: stage cannot be started from its current state")
	ErrStageRunning          = errors.New("wifibeat: stage is running")
	ErrQueueFull             = errors.New("wifibeat: packet queue is full")
	ErrNoDownstream          = errors.New("wifibeat: stage has no downstream to send to")
	ErrLockTimeout           = errors.New("wifibeat: timed out acquiring stage lock")

	// Parser errors; any of these rejects the frame.
	ErrNoRadiotap       = errors.New("wifibeat: frame has no radiotap header")
	ErrFrameTooShort    = errors.New("wifibeat: frame is too short to contain a valid header")
	ErrUnsupportedFrame = errors.New("wifibeat: frame type is not supported")

	// Indexer/sink errors.
	ErrNoReachableIndexer = errors.New("wifibeat: no indexer endpoint could be reached")
	ErrBulkInsertFailed   = errors.New("wifibeat: bulk insert failed")

	// Plugin/capability errors.
	ErrNoDecryptionKeys = errors.New("wifibeat: no decryption keys configured")
)
