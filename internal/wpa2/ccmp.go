package wpa2

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
)

// ccmpDecrypt strips the 8-byte CCMP header from a protected data frame's
// payload, decrypts with AES-CCM (M=8, L=2), and verifies the MIC. mac is
// the frame starting at the MAC header; hdr is its parsed form. The
// returned slice is the plaintext payload only.
func ccmpDecrypt(tk []byte, mac []byte, hdr *dataHeader) ([]byte, bool) {
	payload := mac[hdr.length:]
	if len(payload) < 8+8 {
		return nil, false
	}
	ccmpHdr := payload[:8]
	if ccmpHdr[3]&0x20 == 0 { // ExtIV must be set for CCMP
		return nil, false
	}
	ciphertext := payload[8 : len(payload)-8]
	mic := payload[len(payload)-8:]

	block, err := aes.NewCipher(tk)
	if err != nil {
		return nil, false
	}

	nonce := buildNonce(hdr, ccmpHdr)
	aad := buildAAD(mac, hdr)

	// CTR keystream: block 0 masks the MIC, blocks 1.. decrypt the data.
	ctr := make([]byte, 16)
	ctr[0] = 0x01 // flags: L-1
	copy(ctr[1:14], nonce[:])

	s0 := make([]byte, 16)
	block.Encrypt(s0, ctr)

	plain := make([]byte, len(ciphertext))
	ks := make([]byte, 16)
	for i := 0; i < len(ciphertext); i += 16 {
		binary.BigEndian.PutUint16(ctr[14:], uint16(i/16+1))
		block.Encrypt(ks, ctr)
		n := len(ciphertext) - i
		if n > 16 {
			n = 16
		}
		for j := 0; j < n; j++ {
			plain[i+j] = ciphertext[i+j] ^ ks[j]
		}
	}

	// CBC-MAC over B0, the length-prefixed padded AAD, and the plaintext.
	mac8 := cbcMAC(block, nonce, aad, plain)
	for i := range mac8 {
		mac8[i] ^= s0[i]
	}
	if subtle.ConstantTimeCompare(mac8, mic) != 1 {
		return nil, false
	}
	return plain, true
}

func buildNonce(hdr *dataHeader, ccmpHdr []byte) [13]byte {
	var nonce [13]byte
	if hdr.qos {
		nonce[0] = hdr.tid
	}
	copy(nonce[1:7], hdr.a2[:])
	nonce[7] = ccmpHdr[7] // PN5
	nonce[8] = ccmpHdr[6]
	nonce[9] = ccmpHdr[5]
	nonce[10] = ccmpHdr[4]
	nonce[11] = ccmpHdr[1]
	nonce[12] = ccmpHdr[0] // PN0
	return nonce
}

// buildAAD assembles the additional authenticated data from the MAC header
// with the mutable bits masked: data subtype bits, retry, power management
// and more-data cleared, protected forced on, and the sequence number
// zeroed while keeping the fragment number.
func buildAAD(mac []byte, hdr *dataHeader) []byte {
	aad := make([]byte, 0, 30)
	fc0 := mac[0] &^ 0x70
	fc1 := mac[1]
	if hdr.qos {
		fc1 &^= 0x80 // order
	}
	fc1 &^= 0x08 | 0x10 | 0x20
	fc1 |= 0x40
	aad = append(aad, fc0, fc1)
	aad = append(aad, mac[4:22]...) // A1, A2, A3
	seq0 := mac[22] & 0x0f
	aad = append(aad, seq0, 0)
	if hdr.qos {
		aad = append(aad, hdr.tid, 0)
	}
	return aad
}

func cbcMAC(block cipher.Block, nonce [13]byte, aad, plain []byte) []byte {
	x := make([]byte, 16)

	b0 := make([]byte, 16)
	b0[0] = 0x59 // flags: adata | ((M-2)/2)<<3 | (L-1)
	copy(b0[1:14], nonce[:])
	binary.BigEndian.PutUint16(b0[14:], uint16(len(plain)))
	xorBlockMAC(block, x, b0)

	// AAD block(s), prefixed with the 2-byte length and zero-padded.
	ablock := make([]byte, 0, 2+len(aad)+15)
	var alen [2]byte
	binary.BigEndian.PutUint16(alen[:], uint16(len(aad)))
	ablock = append(ablock, alen[:]...)
	ablock = append(ablock, aad...)
	for len(ablock)%16 != 0 {
		ablock = append(ablock, 0)
	}
	for i := 0; i < len(ablock); i += 16 {
		xorBlockMAC(block, x, ablock[i:i+16])
	}

	buf := make([]byte, 16)
	for i := 0; i < len(plain); i += 16 {
		n := len(plain) - i
		if n > 16 {
			n = 16
		}
		for j := range buf {
			buf[j] = 0
		}
		copy(buf, plain[i:i+n])
		xorBlockMAC(block, x, buf)
	}
	return x[:8]
}

func xorBlockMAC(block cipher.Block, x, in []byte) {
	for i := range x {
		x[i] ^= in[i]
	}
	block.Encrypt(x, x)
}
