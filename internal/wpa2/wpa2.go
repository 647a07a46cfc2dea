// Package wpa2 decrypts CCMP-protected data frames for networks whose
// passphrase is configured. It derives the PMK from the passphrase at load
// time, watches 4-way handshakes to derive per-station transient keys, and
// decrypts in place once a station's key is known.
package wpa2

import (
	"crypto/sha1"
	"fmt"
	"net"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

type addr = [6]byte

type network struct {
	essid string
	pmk   []byte
}

type sessionKey struct {
	bssid addr
	sta   addr
}

// session tracks one station's 4-way handshake progress.
type session struct {
	anonce     [32]byte
	snonce     [32]byte
	haveANonce bool
	haveSNonce bool
	tk         []byte
}

// Decrypter holds the per-network key table and the live handshake state.
type Decrypter struct {
	mu       sync.Mutex
	networks map[addr]network
	sessions map[sessionKey]*session
}

func New() *Decrypter {
	return &Decrypter{
		networks: make(map[addr]network),
		sessions: make(map[sessionKey]*session),
	}
}

// AddKey registers one {essid, bssid, passphrase} triple, deriving the PMK
// immediately (PBKDF2-SHA1, 4096 iterations, ESSID as salt).
func (d *Decrypter) AddKey(essid, bssid, passphrase string) error {
	hw, err := net.ParseMAC(bssid)
	if err != nil || len(hw) != 6 {
		return fmt.Errorf("parsing bssid %q: %w", bssid, err)
	}
	if essid == "" {
		return fmt.Errorf("essid must not be empty")
	}
	if len(passphrase) < 8 || len(passphrase) > 63 {
		return fmt.Errorf("passphrase for %s must be 8 to 63 characters", essid)
	}
	var a addr
	copy(a[:], hw)
	pmk := pbkdf2.Key([]byte(passphrase), []byte(essid), 4096, 32, sha1.New)
	d.mu.Lock()
	d.networks[a] = network{essid: essid, pmk: pmk}
	d.mu.Unlock()
	return nil
}

// HasKeys reports whether any network key is loaded; with none, the
// decryption stage runs in pass-through mode.
func (d *Decrypter) HasKeys() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.networks) > 0
}

// Process inspects one captured frame (radiotap included). EAPOL handshake
// frames feed the key-derivation state; protected data frames of a known
// network are decrypted. It returns the frame to forward (the original
// slice, or a shorter rebuilt one when decryption stripped the CCMP header
// and MIC) and whether decryption succeeded.
func (d *Decrypter) Process(frame []byte) ([]byte, bool) {
	rtLen, ok := radiotapLen(frame)
	if !ok {
		return frame, false
	}
	hdr, ok := parseDataHeader(frame[rtLen:])
	if !ok {
		return frame, false
	}

	if !hdr.protected {
		if eapol, ok := parseEAPOLKey(frame[rtLen+hdr.length:]); ok {
			d.feedHandshake(hdr, eapol, frame[rtLen+hdr.length+8:])
		}
		return frame, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, known := d.networks[hdr.bssid]; !known {
		return frame, false
	}
	sess := d.sessions[sessionKey{bssid: hdr.bssid, sta: hdr.sta}]
	if sess == nil || sess.tk == nil {
		return frame, false
	}

	plain, ok := ccmpDecrypt(sess.tk, frame[rtLen:], hdr)
	if !ok {
		return frame, false
	}

	out := make([]byte, 0, rtLen+hdr.length+len(plain))
	out = append(out, frame[:rtLen+hdr.length]...)
	out[rtLen+1] &^= 0x40 // clear the protected bit
	out = append(out, plain...)
	return out, true
}

// feedHandshake updates the handshake state for one EAPOL-Key message and
// installs the transient key once a MIC-bearing message verifies.
func (d *Decrypter) feedHandshake(hdr *dataHeader, key *eapolKey, raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	nw, known := d.networks[hdr.bssid]
	if !known {
		return
	}

	sk := sessionKey{bssid: hdr.bssid, sta: hdr.sta}
	sess := d.sessions[sk]
	if sess == nil {
		sess = &session{}
		d.sessions[sk] = sess
	}

	switch {
	case key.ack && !key.mic: // message 1
		sess.anonce = key.nonce
		sess.haveANonce = true
	case key.ack && key.mic: // message 3
		sess.anonce = key.nonce
		sess.haveANonce = true
	case !key.ack && key.mic && !key.secure: // message 2
		sess.snonce = key.nonce
		sess.haveSNonce = true
	}

	if !key.mic || !sess.haveANonce || !sess.haveSNonce {
		return
	}

	ptk := derivePTK(nw.pmk, hdr.bssid, hdr.sta, sess.anonce, sess.snonce)
	if !verifyMIC(ptk[:16], key, raw) {
		return
	}
	sess.tk = ptk[32:48]
}
