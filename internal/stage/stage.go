// Package stage implements the stage-graph runtime: a long-lived worker
// with a bounded input queue, a recurring tick, a fan-out connector, and a
// uniform lifecycle state machine. There is one concrete runtime; a stage
// contributes its behavior through the Behavior interface rather than by
// subclassing or generics.
package stage

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skyseer/wifibeat/internal/core"
	"github.com/skyseer/wifibeat/internal/packet"
)

// Status is the stage lifecycle state.
type Status int32

const (
	Created Status = iota
	Initializing
	Initialized
	InitializationFailed
	Starting
	StartingFailed
	Started
	Running
	Stopping
	Stopped
	Crashed
	Aborted
	Killed
)

func (s Status) String() string {
	switch s {
	case Created:
		return "Created"
	case Initializing:
		return "Initializing"
	case Initialized:
		return "Initialized"
	case InitializationFailed:
		return "InitializationFailed"
	case Starting:
		return "Starting"
	case StartingFailed:
		return "StartingFailed"
	case Started:
		return "Started"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	case Crashed:
		return "Crashed"
	case Aborted:
		return "Aborted"
	case Killed:
		return "Killed"
	default:
		return "Unknown"
	}
}

// Behavior is the capability a concrete stage implements. The runtime owns
// the loop, the queue and the fan-out list, and composes the concrete
// stage by delegation.
type Behavior interface {
	// Init performs stage-specific setup (opening a sniffer, a file, an
	// indexer client, ...). Returning an error moves the stage to
	// InitializationFailed.
	Init() error
	// Recurring runs one tick of the stage's work. rt gives access to the
	// owning Stage so the behavior can drain its queue and fan out.
	Recurring(rt *Stage) error
	// Describe returns a short human-readable identity for logging.
	Describe() string
}

// Stage is the runtime: name, status, inbound queue, downstream list,
// optional per-tick sleep, and the behavior it drives.
type Stage struct {
	name     string
	behavior Behavior
	log      *slog.Logger

	in *queue

	statusMu timedMutex
	status   Status

	tick time.Duration

	downMu     sync.RWMutex
	downstream []*Stage

	drainOnStop atomic.Bool
	finished    chan struct{}
	stopSelf    chan struct{}
}

// New constructs a Stage in the Created state.
func New(name string, behavior Behavior, log *slog.Logger) *Stage {
	if log == nil {
		log = slog.Default()
	}
	return &Stage{
		name:     name,
		behavior: behavior,
		log:      log.With("stage", name),
		in:       newQueue(DefaultCapacity),
		statusMu: newTimedMutex(),
		status:   Created,
		finished: make(chan struct{}),
		stopSelf: make(chan struct{}, 1),
	}
}

func (s *Stage) Name() string { return s.name }

func (s *Stage) Status() Status {
	if err := s.statusMu.lock(statusLockTimeout); err != nil {
		return s.status
	}
	defer s.statusMu.unlock()
	return s.status
}

func (s *Stage) setStatus(v Status) {
	if err := s.statusMu.lock(statusLockTimeout); err != nil {
		panic(err)
	}
	defer s.statusMu.unlock()
	s.status = v
}

// AddDownstream appends a downstream stage. Downstream lists are set during
// topology wiring and never mutated once the topology is running.
func (s *Stage) AddDownstream(next *Stage) {
	s.downMu.Lock()
	defer s.downMu.Unlock()
	s.downstream = append(s.downstream, next)
}

func initializable(st Status) bool {
	switch st {
	case Created, InitializationFailed, StartingFailed, Stopped, Crashed, Aborted, Killed:
		return true
	default:
		return false
	}
}

func startable(st Status) bool {
	switch st {
	case Initialized, Stopped, Crashed, Aborted, Killed:
		return true
	default:
		return false
	}
}

// Init sets the tick dwell and runs the behavior's own setup. tick of 0
// means no sleep between ticks.
func (s *Stage) Init(tick time.Duration) error {
	if !initializable(s.Status()) {
		return fmt.Errorf("%w: stage %q is %s", core.ErrStageNotInitializable, s.name, s.Status())
	}
	s.setStatus(Initializing)
	s.tick = tick
	if err := s.behavior.Init(); err != nil {
		s.setStatus(InitializationFailed)
		return fmt.Errorf("init %q: %w", s.name, err)
	}
	s.setStatus(Initialized)
	return nil
}

// Start spawns the worker goroutine.
func (s *Stage) Start() error {
	if !startable(s.Status()) {
		return fmt.Errorf("%w: stage %q is %s", core.ErrStageNotStartable, s.name, s.Status())
	}
	s.setStatus(Starting)
	s.finished = make(chan struct{})
	s.stopSelf = make(chan struct{}, 1)
	s.setStatus(Started)
	go s.loop()
	return nil
}

// loop is the worker. Only main registers a signal.Notify channel, so
// worker goroutines never observe SIGINT/SIGTERM; termination always
// arrives as a status change.
func (s *Stage) loop() {
	s.setStatus(Running)
	for {
		st := s.Status()
		draining := st == Stopping && s.drainOnStop.Load() && !s.in.empty()
		if st != Running && !draining {
			break
		}
		if s.tickOnce() {
			break
		}
		if s.tick > 0 {
			time.Sleep(s.tick)
		}
	}
	// Terminal release of any residual packets, on every exit path.
	s.in.drainAll()
	if s.Status() == Stopping {
		s.setStatus(Stopped)
	}
	close(s.finished)
}

// tickOnce runs one Recurring call inside a recover guard. Returns true if
// the stage crashed and the loop must exit immediately.
func (s *Stage) tickOnce() (crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("stage panicked", "panic", r)
			s.setStatus(Crashed)
			crashed = true
		}
	}()
	select {
	case <-s.stopSelf:
		s.setStatus(Stopping)
		return false
	default:
	}
	if err := s.behavior.Recurring(s); err != nil {
		s.log.Error("stage recurring failed", "error", err)
		s.setStatus(Crashed)
		return true
	}
	return false
}

// Stop requests a graceful shutdown. It is idempotent: calling it while
// already Stopping or Stopped succeeds.
func (s *Stage) Stop(drain bool) error {
	st := s.Status()
	if st == Stopping || st == Stopped || st == Crashed || st == Killed || st == Aborted {
		return nil
	}
	if st != Running {
		return fmt.Errorf("%w: stage %q is %s", core.ErrStageRunning, s.name, st)
	}
	s.drainOnStop.Store(drain)
	s.setStatus(Stopping)
	return nil
}

// Kill refuses while Running; otherwise waits up to wait for a graceful
// Stopped, polling every 10ms, then force-releases the worker.
func (s *Stage) Kill(wait time.Duration) error {
	if s.Status() == Running {
		return fmt.Errorf("%w: cannot kill stage %q", core.ErrStageRunning, s.name)
	}
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if s.Status() == Stopped {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	if s.Status() != Stopped {
		s.setStatus(Killed)
	}
	return nil
}

// ThreadFinished lets a behavior request its own stop from inside Recurring
// (used by the file reader on EOF).
func (s *Stage) ThreadFinished() {
	select {
	case s.stopSelf <- struct{}{}:
	default:
	}
}

// Joined is closed once the worker goroutine has exited.
func (s *Stage) Joined() <-chan struct{} { return s.finished }

// Push enqueues a handle into this stage's input queue. It is the receiving
// half of fan-out: an upstream stage calls Push on each of its downstreams.
func (s *Stage) Push(h *packet.Handle) bool { return s.in.push(h) }

// Drain removes and returns every queued handle, for use inside Recurring.
func (s *Stage) Drain() []*packet.Handle { return s.in.drainAll() }

// QueueEmpty reports whether the input queue currently holds nothing.
func (s *Stage) QueueEmpty() bool { return s.in.empty() }

// Log exposes the stage-scoped logger to behaviors.
func (s *Stage) Log() *slog.Logger { return s.log }

// SendDownstream implements the fan-out connector: the primary (index 0)
// downstream always receives the original handle; every
// other downstream receives an independently owned deep clone. If any
// enqueue fails, the handles not yet taken are dropped and the call reports
// failure.
func (s *Stage) SendDownstream(h *packet.Handle) error {
	s.downMu.RLock()
	down := s.downstream
	s.downMu.RUnlock()

	switch len(down) {
	case 0:
		return fmt.Errorf("%w: stage %q", core.ErrNoDownstream, s.name)
	case 1:
		if !down[0].Push(h) {
			return fmt.Errorf("%w: stage %q -> %q", core.ErrQueueFull, s.name, down[0].name)
		}
		return nil
	default:
		for i := 1; i < len(down); i++ {
			clone := h.Clone()
			if !down[i].Push(clone) {
				return fmt.Errorf("%w: stage %q -> %q", core.ErrQueueFull, s.name, down[i].name)
			}
		}
		if !down[0].Push(h) {
			return fmt.Errorf("%w: stage %q -> %q", core.ErrQueueFull, s.name, down[0].name)
		}
		return nil
	}
}
