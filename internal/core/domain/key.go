package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize is the length in bytes of every derived channel key.
const KeySize = 32

// KeyHexLen is the length of a key's lowercase hex form.
const KeyHexLen = KeySize * 2

// ErrMalformedKey is returned when a hex key cannot be decoded into KeySize bytes.
var ErrMalformedKey = errors.New("malformed key")

// Key is a 256-bit symmetric channel key.
type Key [KeySize]byte

// Hex returns the 64-character lowercase hex form used at the persistence boundary.
func (k Key) Hex() string {
	return hex.EncodeToString(k[:])
}

// String keeps key material out of logs and fmt output.
func (k Key) String() string {
	return "Key(redacted)"
}

// IsZero reports whether k is the all-zero key.
func (k Key) IsZero() bool {
	return k == Key{}
}

// ParseKey decodes a 64-character hex string into a Key.
func ParseKey(s string) (Key, error) {
	var k Key
	if len(s) != KeyHexLen {
		return k, fmt.Errorf("%w: expected %d hex chars, got %d", ErrMalformedKey, KeyHexLen, len(s))
	}
	if _, err := hex.Decode(k[:], []byte(s)); err != nil {
		return k, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return k, nil
}
