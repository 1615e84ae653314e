// Package cipher implements the RPG Maker MV/MZ asset mask: a positional XOR of
// the key over the bytes that follow a fixed 16-byte header. The mask is applied
// once and never cycled, so body bytes past the key length are stored in the
// clear.
package cipher

import (
	"errors"
	"fmt"

	"rpgdecrypt/internal/keycodec"
)

// HeaderSize is the length of the fake header that prefixes every encrypted asset.
const HeaderSize = 16

// Header is the signature RPG Maker writes in front of encrypted assets.
var Header = [HeaderSize]byte{
	'R', 'P', 'G', 'M', 'V', 0x00, 0x00, 0x00,
	0x00, 0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// ErrShortBuffer reports a buffer that cannot hold the header.
var ErrShortBuffer = errors.New("buffer shorter than header")

// Decrypt unmasks buf in place and returns the body that follows the header.
// The header bytes are left untouched.
func Decrypt(buf []byte, key keycodec.Key) ([]byte, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrShortBuffer, len(buf), HeaderSize)
	}
	body := buf[HeaderSize:]
	n := min(len(body), key.Len())
	for i := 0; i < n; i++ {
		body[i] ^= key.At(i)
	}
	return body, nil
}

// Encrypt builds an encrypted asset from plain content: the standard header
// followed by the masked content. plain is not modified.
func Encrypt(plain []byte, key keycodec.Key) []byte {
	out := make([]byte, HeaderSize+len(plain))
	copy(out, Header[:])
	copy(out[HeaderSize:], plain)
	// Cannot fail: out always holds a full header.
	_, _ = Decrypt(out, key)
	return out
}
