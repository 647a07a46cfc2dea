package wpa2

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
)

var llcSnapEAPOL = []byte{0xaa, 0xaa, 0x03, 0x00, 0x00, 0x00, 0x88, 0x8e}

// eapolKey is one parsed EAPOL-Key message of the 4-way handshake.
type eapolKey struct {
	descVersion byte
	pairwise    bool
	install     bool
	ack         bool
	mic         bool
	secure      bool
	nonce       [32]byte
	micValue    [16]byte
	micOffset   int
}

// parseEAPOLKey decodes an unprotected data payload as LLC/SNAP + EAPOL-Key,
// returning false when the payload is anything else.
func parseEAPOLKey(payload []byte) (*eapolKey, bool) {
	if len(payload) < 8 || !bytes.Equal(payload[:8], llcSnapEAPOL) {
		return nil, false
	}
	p := payload[8:]
	// version(1) type(1) length(2) then the key descriptor
	if len(p) < 4+95 || p[1] != 3 {
		return nil, false
	}
	desc := p[4:]
	if desc[0] != 2 && desc[0] != 254 { // RSN or WPA descriptor
		return nil, false
	}
	info := binary.BigEndian.Uint16(desc[1:3])
	k := &eapolKey{
		descVersion: byte(info & 0x0007),
		pairwise:    info&0x0008 != 0,
		install:     info&0x0040 != 0,
		ack:         info&0x0080 != 0,
		mic:         info&0x0100 != 0,
		secure:      info&0x0200 != 0,
		micOffset:   4 + 77,
	}
	if !k.pairwise {
		return nil, false
	}
	copy(k.nonce[:], desc[13:45])
	copy(k.micValue[:], desc[77:93])
	return k, true
}

// derivePTK runs the 802.11 pairwise key expansion PRF over the two MAC
// addresses and nonces, yielding KCK(16) | KEK(16) | TK(16) and the TKIP
// MIC keys the CCMP path does not use.
func derivePTK(pmk []byte, aa, spa addr, anonce, snonce [32]byte) []byte {
	data := make([]byte, 0, 12+64)
	if bytes.Compare(aa[:], spa[:]) < 0 {
		data = append(data, aa[:]...)
		data = append(data, spa[:]...)
	} else {
		data = append(data, spa[:]...)
		data = append(data, aa[:]...)
	}
	if bytes.Compare(anonce[:], snonce[:]) < 0 {
		data = append(data, anonce[:]...)
		data = append(data, snonce[:]...)
	} else {
		data = append(data, snonce[:]...)
		data = append(data, anonce[:]...)
	}
	return prf(pmk, []byte("Pairwise key expansion"), data, 64)
}

// prf is the 802.11 PRF-n: HMAC-SHA1 in counter mode over
// prefix | 0x00 | data | counter.
func prf(key, prefix, data []byte, n int) []byte {
	var out []byte
	for i := 0; len(out) < n; i++ {
		h := hmac.New(sha1.New, key)
		h.Write(prefix)
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{byte(i)})
		out = h.Sum(out)
	}
	return out[:n]
}

// verifyMIC recomputes the EAPOL-Key MIC over raw (the EAPOL frame starting
// at the version byte) with the MIC field zeroed, using the key
// confirmation key. Descriptor version 1 is HMAC-MD5, version 2 is
// HMAC-SHA1 truncated to 16 bytes.
func verifyMIC(kck []byte, key *eapolKey, raw []byte) bool {
	if len(raw) < key.micOffset+16 {
		return false
	}
	zeroed := make([]byte, len(raw))
	copy(zeroed, raw)
	for i := 0; i < 16; i++ {
		zeroed[key.micOffset+i] = 0
	}
	var sum []byte
	switch key.descVersion {
	case 1:
		h := hmac.New(md5.New, kck)
		h.Write(zeroed)
		sum = h.Sum(nil)
	case 2:
		h := hmac.New(sha1.New, kck)
		h.Write(zeroed)
		sum = h.Sum(nil)[:16]
	default:
		return false
	}
	return hmac.Equal(sum, key.micValue[:])
}
