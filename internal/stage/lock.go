package stage

import (
	"time"

	"github.com/skyseer/wifibeat/internal/core"
)

// statusLockTimeout is the bounded acquisition window for stage status
// transitions. An acquire failure is a hard error: a status mutex held
// for 3 seconds means a worker is wedged.
const statusLockTimeout = 3 * time.Second

// timedMutex is a binary semaphore that can be acquired with a deadline
// instead of blocking forever.
type timedMutex chan struct{}

func newTimedMutex() timedMutex {
	m := make(timedMutex, 1)
	m <- struct{}{}
	return m
}

func (m timedMutex) lock(timeout time.Duration) error {
	select {
	case <-m:
		return nil
	case <-time.After(timeout):
		return core.ErrLockTimeout
	}
}

func (m timedMutex) unlock() {
	m <- struct{}{}
}
