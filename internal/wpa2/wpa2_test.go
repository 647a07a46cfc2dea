package wpa2

import (
	"crypto/aes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPMKDerivationVector(t *testing.T) {
	// Reference vector: passphrase "password", SSID "IEEE".
	d := New()
	require.NoError(t, d.AddKey("IEEE", "00:11:22:33:44:55", "password"))

	var bssid addr
	copy(bssid[:], []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	want, _ := hex.DecodeString("f42c6fc52df0ebef9ebb4b90b38a5f902e83fe1b135a70e23aed762e9710a12e")
	assert.Equal(t, want, d.networks[bssid].pmk)
}

func TestAddKeyRejectsBadInput(t *testing.T) {
	d := New()
	assert.Error(t, d.AddKey("net", "not-a-mac", "password123"))
	assert.Error(t, d.AddKey("", "00:11:22:33:44:55", "password123"))
	assert.Error(t, d.AddKey("net", "00:11:22:33:44:55", "short"))
	assert.False(t, d.HasKeys())
	require.NoError(t, d.AddKey("net", "00:11:22:33:44:55", "password123"))
	assert.True(t, d.HasKeys())
}

var (
	testBSSID = addr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	testSTA   = addr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
)

func testRadiotap() []byte { return []byte{0, 0, 8, 0, 0, 0, 0, 0} }

// buildDataHeader builds a 24-byte data MAC header. fromAP selects the
// FromDS direction (AP to station).
func buildDataHeader(fromAP, protected bool) []byte {
	hdr := make([]byte, 24)
	hdr[0] = 0x08 // data
	if fromAP {
		hdr[1] = 0x02
		copy(hdr[4:10], testSTA[:])
		copy(hdr[10:16], testBSSID[:])
		copy(hdr[16:22], testBSSID[:])
	} else {
		hdr[1] = 0x01
		copy(hdr[4:10], testBSSID[:])
		copy(hdr[10:16], testSTA[:])
		copy(hdr[16:22], testBSSID[:])
	}
	if protected {
		hdr[1] |= 0x40
	}
	return hdr
}

// buildEAPOLKey assembles an EAPOL-Key frame from the version byte on.
func buildEAPOLKey(keyInfo uint16, nonce [32]byte, mic []byte) []byte {
	desc := make([]byte, 95)
	desc[0] = 2 // RSN key descriptor
	binary.BigEndian.PutUint16(desc[1:3], keyInfo)
	binary.BigEndian.PutUint16(desc[3:5], 16)
	copy(desc[13:45], nonce[:])
	if mic != nil {
		copy(desc[77:93], mic)
	}
	frame := make([]byte, 0, 4+len(desc))
	frame = append(frame, 2, 3) // 802.1X-2004, EAPOL-Key
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(desc)))
	frame = append(frame, l[:]...)
	frame = append(frame, desc...)
	return frame
}

func wrapEAPOL(fromAP bool, eapol []byte) []byte {
	frame := append([]byte{}, testRadiotap()...)
	frame = append(frame, buildDataHeader(fromAP, false)...)
	frame = append(frame, llcSnapEAPOL...)
	frame = append(frame, eapol...)
	return frame
}

func TestHandshakeThenDecrypt(t *testing.T) {
	d := New()
	require.NoError(t, d.AddKey("TestNet", "aa:bb:cc:dd:ee:ff", "password123"))

	var anonce, snonce [32]byte
	for i := range anonce {
		anonce[i] = byte(i)
		snonce[i] = byte(0xff - i)
	}

	pmk := d.networks[testBSSID].pmk
	ptk := derivePTK(pmk, testBSSID, testSTA, anonce, snonce)

	// Message 1: AP to station, ANonce, no MIC.
	m1 := wrapEAPOL(true, buildEAPOLKey(0x008a, anonce, nil))
	out, dec := d.Process(m1)
	assert.False(t, dec)
	assert.Equal(t, m1, out)

	// Message 2: station to AP, SNonce, MIC over the zero-MIC frame.
	m2Key := buildEAPOLKey(0x010a, snonce, nil)
	h := hmac.New(sha1.New, ptk[:16])
	h.Write(m2Key)
	m2Key = buildEAPOLKey(0x010a, snonce, h.Sum(nil)[:16])
	_, dec = d.Process(wrapEAPOL(false, m2Key))
	assert.False(t, dec)

	sess := d.sessions[sessionKey{bssid: testBSSID, sta: testSTA}]
	require.NotNil(t, sess)
	require.NotNil(t, sess.tk, "transient key must be installed after a verified M2")
	assert.Equal(t, ptk[32:48], sess.tk)

	// A protected data frame encrypted with the session's transient key.
	plaintext := []byte{0xaa, 0xaa, 0x03, 0x00, 0x00, 0x00, 0x08, 0x00, 0xde, 0xad, 0xbe, 0xef}
	frame := encryptCCMP(t, sess.tk, plaintext)

	out, dec = d.Process(frame)
	require.True(t, dec, "frame must decrypt with the installed key")
	assert.Equal(t, plaintext, out[8+24:])
	assert.Zero(t, out[8+1]&0x40, "protected bit must be cleared after decryption")
}

// encryptCCMP is the test-side inverse of ccmpDecrypt.
func encryptCCMP(t *testing.T, tk, plaintext []byte) []byte {
	t.Helper()
	mac := buildDataHeader(true, true)
	ccmpHdr := []byte{0x01, 0x00, 0x00, 0x20, 0x00, 0x00, 0x00, 0x00} // PN=1, ExtIV

	hdr, ok := parseDataHeader(append(append([]byte{}, mac...), make([]byte, 16)...))
	require.True(t, ok)

	block, err := aes.NewCipher(tk)
	require.NoError(t, err)
	nonce := buildNonce(hdr, ccmpHdr)
	aad := buildAAD(mac, hdr)

	mic := cbcMAC(block, nonce, aad, plaintext)
	ctr := make([]byte, 16)
	ctr[0] = 0x01
	copy(ctr[1:14], nonce[:])
	s0 := make([]byte, 16)
	block.Encrypt(s0, ctr)
	for i := range mic {
		mic[i] ^= s0[i]
	}

	ciphertext := make([]byte, len(plaintext))
	ks := make([]byte, 16)
	for i := 0; i < len(plaintext); i += 16 {
		binary.BigEndian.PutUint16(ctr[14:], uint16(i/16+1))
		block.Encrypt(ks, ctr)
		n := len(plaintext) - i
		if n > 16 {
			n = 16
		}
		for j := 0; j < n; j++ {
			ciphertext[i+j] = plaintext[i+j] ^ ks[j]
		}
	}

	frame := append([]byte{}, testRadiotap()...)
	frame = append(frame, mac...)
	frame = append(frame, ccmpHdr...)
	frame = append(frame, ciphertext...)
	frame = append(frame, mic...)
	return frame
}

func TestProcessIgnoresUnknownNetwork(t *testing.T) {
	d := New()
	require.NoError(t, d.AddKey("TestNet", "11:22:33:44:55:66", "password123"))

	frame := append([]byte{}, testRadiotap()...)
	frame = append(frame, buildDataHeader(true, true)...)
	frame = append(frame, make([]byte, 24)...)
	out, dec := d.Process(frame)
	assert.False(t, dec)
	assert.Equal(t, frame, out)
}
