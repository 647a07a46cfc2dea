// Package packet defines the owned unit of work that moves between stages:
// a captured 802.11 frame plus its capture timestamp.
package packet

import "time"

// Handle is the PacketHandle of the pipeline: an owned frame buffer and the
// instant it was captured. A Handle is always fully owned by exactly one
// stage at a time; ownership moves on successful enqueue, and a handle that
// fails to enqueue is dropped by its producer rather than retried.
type Handle struct {
	// Frame is the raw captured bytes, radiotap header included. Stages that
	// mutate payload (decryption) do so in place on this slice.
	Frame []byte

	// Captured is the real-time clock reading taken once at source and
	// never mutated afterward.
	Captured time.Time

	// InterfaceIndex identifies the originating capture interface, or -1
	// for frames read from a file.
	InterfaceIndex int

	// Decrypted is true only when the decryption stage successfully
	// decrypted this frame's payload in place.
	Decrypted bool

	// DecryptAttempted is true whenever the decryption stage ran a key
	// match attempt against this frame, regardless of outcome. It is
	// false when the stage is in pass-through mode (no keys configured),
	// which lets downstream consumers distinguish "not decrypted because
	// no attempt was made" from "attempted and failed".
	DecryptAttempted bool
}

// New builds a Handle that owns buf. The caller must not retain buf after
// passing it in.
func New(buf []byte, captured time.Time, ifaceIndex int) *Handle {
	return &Handle{Frame: buf, Captured: captured, InterfaceIndex: ifaceIndex}
}

// Clone returns a deep copy: the frame buffer is copied byte-for-byte and the
// timestamp is copied by value. Mutating the clone's Frame never affects h's.
func (h *Handle) Clone() *Handle {
	cp := make([]byte, len(h.Frame))
	copy(cp, h.Frame)
	return &Handle{
		Frame:            cp,
		Captured:         h.Captured,
		InterfaceIndex:   h.InterfaceIndex,
		Decrypted:        h.Decrypted,
		DecryptAttempted: h.DecryptAttempted,
	}
}
