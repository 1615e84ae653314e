// Package keycodec parses the hex-encoded encryptionKey stored in System.json
// into the byte mask used by the asset cipher.
package keycodec

import (
	"errors"
	"fmt"
)

// ErrInvalidLength reports a key string whose digits cannot pair into bytes.
var ErrInvalidLength = errors.New("invalid length")

// InvalidCharacterError reports the first character that is not a hex digit.
type InvalidCharacterError struct {
	Char  rune
	Index int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character at index %d: %q", e.Index, e.Char)
}

// Key is an immutable byte mask.
type Key struct {
	mask []byte
}

// Parse decodes a hex string (most-significant nibble first) into a Key.
// Length is checked first: any odd-length or empty string is
// ErrInvalidLength, whatever characters it holds.
func Parse(s string) (Key, error) {
	if len(s) == 0 || len(s)%2 != 0 {
		return Key{}, ErrInvalidLength
	}
	for i, r := range s {
		if _, ok := nibble(r); !ok {
			return Key{}, &InvalidCharacterError{Char: r, Index: i}
		}
	}

	mask := make([]byte, len(s)/2)
	for i := range mask {
		hi, _ := nibble(rune(s[2*i]))
		lo, _ := nibble(rune(s[2*i+1]))
		mask[i] = hi<<4 | lo
	}
	return Key{mask: mask}, nil
}

// MustParse is Parse for constants and test fixtures.
func MustParse(s string) Key {
	key, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("keycodec: parse %q: %v", s, err))
	}
	return key
}

// Len returns the number of mask bytes.
func (k Key) Len() int { return len(k.mask) }

// At returns mask byte i.
func (k Key) At(i int) byte { return k.mask[i] }

// Bytes returns a copy of the mask.
func (k Key) Bytes() []byte {
	out := make([]byte, len(k.mask))
	copy(out, k.mask)
	return out
}

// IsZero reports whether the key was never parsed.
func (k Key) IsZero() bool { return len(k.mask) == 0 }

func nibble(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'a' && r <= 'f':
		return byte(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 10, true
	default:
		return 0, false
	}
}
