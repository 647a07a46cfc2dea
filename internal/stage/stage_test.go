package stage

import (
	"errors"
	"testing"
	"time"

	"github.com/skyseer/wifibeat/internal/core"
	"github.com/skyseer/wifibeat/internal/packet"
)

type countingBehavior struct {
	initErr  error
	ticks    int
	onTick   func(rt *Stage) error
	initFn   func() error
}

func (b *countingBehavior) Init() error {
	if b.initFn != nil {
		return b.initFn()
	}
	return b.initErr
}

func (b *countingBehavior) Recurring(rt *Stage) error {
	b.ticks++
	if b.onTick != nil {
		return b.onTick(rt)
	}
	return nil
}

func (b *countingBehavior) Describe() string { return "counting" }

func waitStatus(t *testing.T, s *Stage, want Status, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if s.Status() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("stage %q never reached %s, stuck at %s", s.Name(), want, s.Status())
}

func TestLifecycleTransitions(t *testing.T) {
	t.Run("init requires a startable-from state", func(t *testing.T) {
		s := New("t1", &countingBehavior{}, nil)
		if err := s.Init(0); err != nil {
			t.Fatalf("init from Created should succeed: %v", err)
		}
		if s.Status() != Initialized {
			t.Fatalf("expected Initialized, got %s", s.Status())
		}
	})

	t.Run("start fails unless Initialized/Stopped/Crashed/Aborted/Killed", func(t *testing.T) {
		s := New("t2", &countingBehavior{}, nil)
		if err := s.Start(); !errors.Is(err, core.ErrStageNotStartable) {
			t.Fatalf("expected ErrStageNotStartable, got %v", err)
		}
	})

	t.Run("init fails on behavior error", func(t *testing.T) {
		s := New("t3", &countingBehavior{initErr: errors.New("boom")}, nil)
		if err := s.Init(0); err == nil {
			t.Fatal("expected error")
		}
		if s.Status() != InitializationFailed {
			t.Fatalf("expected InitializationFailed, got %s", s.Status())
		}
	})

	t.Run("kill returns failure iff status is Running", func(t *testing.T) {
		s := New("t4", &countingBehavior{}, nil)
		_ = s.Init(time.Millisecond)
		_ = s.Start()
		waitStatus(t, s, Running, time.Second)
		if err := s.Kill(10 * time.Millisecond); !errors.Is(err, core.ErrStageRunning) {
			t.Fatalf("expected ErrStageRunning, got %v", err)
		}
		if err := s.Stop(false); err != nil {
			t.Fatalf("stop: %v", err)
		}
		<-s.Joined()
		if err := s.Kill(100 * time.Millisecond); err != nil {
			t.Fatalf("kill after stop: %v", err)
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		s := New("t5", &countingBehavior{}, nil)
		_ = s.Init(time.Millisecond)
		_ = s.Start()
		waitStatus(t, s, Running, time.Second)
		if err := s.Stop(false); err != nil {
			t.Fatalf("first stop: %v", err)
		}
		<-s.Joined()
		if err := s.Stop(false); err != nil {
			t.Fatalf("second stop on a Stopped stage should be a no-op, got: %v", err)
		}
	})
}

func TestOwnershipOnDrainStop(t *testing.T) {
	s := New("owner", &countingBehavior{}, nil)
	_ = s.Init(time.Millisecond)
	_ = s.Start()
	waitStatus(t, s, Running, time.Second)

	for i := 0; i < 5; i++ {
		s.Push(packet.New([]byte{byte(i)}, time.Now(), 0))
	}
	if err := s.Stop(false); err != nil {
		t.Fatalf("stop: %v", err)
	}
	<-s.Joined()
	if !s.QueueEmpty() {
		t.Fatal("queue must be empty after a stopped worker has joined")
	}
}

func TestFanOutCloning(t *testing.T) {
	up := New("up", &countingBehavior{}, nil)
	d0 := New("d0", &countingBehavior{}, nil)
	d1 := New("d1", &countingBehavior{}, nil)
	d2 := New("d2", &countingBehavior{}, nil)
	up.AddDownstream(d0)
	up.AddDownstream(d1)
	up.AddDownstream(d2)

	orig := packet.New([]byte{0xAA}, time.Now(), 0)
	if err := up.SendDownstream(orig); err != nil {
		t.Fatalf("send: %v", err)
	}

	got0 := d0.Drain()
	got1 := d1.Drain()
	got2 := d2.Drain()
	if len(got0) != 1 || len(got1) != 1 || len(got2) != 1 {
		t.Fatalf("expected one handle per downstream, got %d %d %d", len(got0), len(got1), len(got2))
	}
	if got0[0] != orig {
		t.Fatal("primary downstream must receive the original object identity")
	}
	if got1[0] == orig || got2[0] == orig {
		t.Fatal("secondary downstreams must receive clones, not the original")
	}
	if got1[0] == got2[0] {
		t.Fatal("each secondary downstream must receive a distinct clone")
	}

	got1[0].Frame[0] = 0xFF
	if got2[0].Frame[0] == 0xFF || orig.Frame[0] == 0xFF {
		t.Fatal("mutating one clone's frame must not affect the others")
	}
}

func TestFanOutNoDownstream(t *testing.T) {
	s := New("lonely", &countingBehavior{}, nil)
	err := s.SendDownstream(packet.New([]byte{1}, time.Now(), 0))
	if !errors.Is(err, core.ErrNoDownstream) {
		t.Fatalf("expected ErrNoDownstream, got %v", err)
	}
}

func TestFanOutQueueFullDropsRemainder(t *testing.T) {
	up := New("up", &countingBehavior{}, nil)
	full := New("full", &countingBehavior{}, nil)
	up.AddDownstream(full)
	for i := 0; i < DefaultCapacity; i++ {
		full.Push(packet.New([]byte{0}, time.Now(), 0))
	}
	err := up.SendDownstream(packet.New([]byte{1}, time.Now(), 0))
	if !errors.Is(err, core.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestThreadFinishedStopsFromWithinRecurring(t *testing.T) {
	b := &countingBehavior{}
	s := New("eof", b, nil)
	b.onTick = func(rt *Stage) error {
		rt.ThreadFinished()
		return nil
	}
	_ = s.Init(time.Millisecond)
	_ = s.Start()
	select {
	case <-s.Joined():
	case <-time.After(time.Second):
		t.Fatal("stage never stopped after ThreadFinished")
	}
	if s.Status() != Stopped {
		t.Fatalf("expected Stopped, got %s", s.Status())
	}
}
