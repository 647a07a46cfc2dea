// Package topology instantiates the stage graph from the settings and owns
// every stage for the whole run: wiring happens at build, start and stop
// follow the fixed orders of the design, and teardown drops the entire
// structure at once after all workers have been joined.
package topology

import (
	"fmt"
	"sync"
	"time"

	"github.com/skyseer/wifibeat/internal/stage"
)

// Per-kind tick periods.
const (
	tickFileReader  = 1 * time.Nanosecond
	tickCapture     = 1 * time.Nanosecond
	tickFileWriter  = 100 * time.Nanosecond
	tickHopper      = time.Millisecond
	tickPersistence = 100 * time.Nanosecond
	tickDecryption  = time.Millisecond
	tickIndexer     = 100 * time.Microsecond
)

const stopPoll = 5 * time.Millisecond

// Topology owns the full stage set. It is mutated only at build, start and
// stop under a coarse lock, never while running.
type Topology struct {
	mu sync.Mutex

	indexers    []*stage.Stage
	decryption  *stage.Stage
	persistence *stage.Stage
	hoppers     []*stage.Stage
	fileWriters []*stage.Stage
	captures    []*stage.Stage
	fileReaders []*stage.Stage

	closers []func()
}

// Stages returns every stage in start order, indexers first.
func (t *Topology) Stages() []*stage.Stage {
	var out []*stage.Stage
	out = append(out, t.indexers...)
	if t.decryption != nil {
		out = append(out, t.decryption)
	}
	if t.persistence != nil {
		out = append(out, t.persistence)
	}
	out = append(out, t.hoppers...)
	out = append(out, t.fileWriters...)
	out = append(out, t.captures...)
	out = append(out, t.fileReaders...)
	return out
}

type initEntry struct {
	s    *stage.Stage
	tick time.Duration
}

func (t *Topology) initOrder() []initEntry {
	var out []initEntry
	for _, s := range t.indexers {
		out = append(out, initEntry{s, tickIndexer})
	}
	if t.decryption != nil {
		out = append(out, initEntry{t.decryption, tickDecryption})
	}
	if t.persistence != nil {
		out = append(out, initEntry{t.persistence, tickPersistence})
	}
	for _, s := range t.hoppers {
		out = append(out, initEntry{s, tickHopper})
	}
	for _, s := range t.fileWriters {
		out = append(out, initEntry{s, tickFileWriter})
	}
	for _, s := range t.captures {
		out = append(out, initEntry{s, tickCapture})
	}
	for _, s := range t.fileReaders {
		out = append(out, initEntry{s, tickFileReader})
	}
	return out
}

// Init initializes every stage with its kind's tick period. The first
// failure aborts: a single InitFailed stage is fatal for the whole run.
func (t *Topology) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.initOrder() {
		if err := e.s.Init(e.tick); err != nil {
			return fmt.Errorf("initializing %s: %w", e.s.Name(), err)
		}
	}
	return nil
}

// Start spawns the workers in dependency order, sinks first, so no stage
// ever sends to a downstream that is not yet running.
func (t *Topology) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.initOrder() {
		if err := e.s.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", e.s.Name(), err)
		}
	}
	return nil
}

// stopAndWait requests a stop and polls the stage out of Running|Stopping.
func stopAndWait(s *stage.Stage, drain bool) {
	_ = s.Stop(drain)
	for {
		st := s.Status()
		if st != stage.Running && st != stage.Stopping {
			return
		}
		time.Sleep(stopPoll)
	}
}

// Stop tears the pipeline down from the sources inward: file readers,
// captures, file writers and hoppers without draining, then decryption,
// the indexers and persistence, in that order, each with a drain.
func (t *Topology) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.fileReaders {
		stopAndWait(s, false)
	}
	for _, s := range t.captures {
		stopAndWait(s, false)
	}
	for _, s := range t.fileWriters {
		stopAndWait(s, false)
	}
	for _, s := range t.hoppers {
		stopAndWait(s, false)
	}
	if t.decryption != nil {
		stopAndWait(t.decryption, true)
	}
	for _, s := range t.indexers {
		stopAndWait(s, true)
	}
	if t.persistence != nil {
		stopAndWait(t.persistence, true)
	}
}

// Kill releases every worker that did not stop gracefully, then runs the
// deferred resource closers. After Kill the topology must be dropped.
func (t *Topology) Kill(wait time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.Stages() {
		_ = s.Kill(wait)
	}
	for _, c := range t.closers {
		c()
	}
	t.closers = nil
}

// CanStop reports whether every source stage has finished on its own: true
// when no file reader and no capture stage is still starting or running.
func (t *Topology) CanStop() bool {
	sources := append(append([]*stage.Stage{}, t.fileReaders...), t.captures...)
	if len(sources) == 0 {
		return false
	}
	for _, s := range sources {
		switch s.Status() {
		case stage.Starting, stage.Started, stage.Running:
			return false
		}
	}
	return true
}

// Drained reports whether s has released everything it held: its queue is
// empty and it is in a terminal state.
func Drained(s *stage.Stage) bool {
	if !s.QueueEmpty() {
		return false
	}
	switch s.Status() {
	case stage.Stopped, stage.Crashed, stage.Killed, stage.Aborted:
		return true
	default:
		return false
	}
}
