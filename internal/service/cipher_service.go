package service

import (
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"quantum-bank/internal/core/domain"
	"quantum-bank/pkg/apperror"
)

// ErrInvalidPlaintext is wrapped in a decryption failure when the opened
// bytes are not valid UTF-8.
var ErrInvalidPlaintext = errors.New("opened payload is not valid UTF-8")

// XORCipher implements ports.Cipher as a repeating-key XOR with the 32-byte
// channel key: byte i of the output is input[i] XOR key[i mod 32].
//
// The same key seals every transaction on a channel, so two ciphertexts
// under one key leak the XOR of their plaintexts. This construction gives
// no confidentiality against an attacker holding more than one payload.
type XORCipher struct{}

// NewXORCipher creates a new XORCipher.
func NewXORCipher() *XORCipher {
	return &XORCipher{}
}

// Seal XORs plaintext with the key. Seal and Open are inverses.
func (c *XORCipher) Seal(plaintext []byte, key domain.Key) []byte {
	return xorKeyStream(plaintext, key)
}

// Open reverses Seal and rejects output that is not valid UTF-8 text.
func (c *XORCipher) Open(ciphertext []byte, key domain.Key) ([]byte, error) {
	plaintext := xorKeyStream(ciphertext, key)
	if !utf8.Valid(plaintext) {
		return nil, apperror.ErrDecryptionFailure(ErrInvalidPlaintext)
	}
	return plaintext, nil
}

// SealHex seals plaintext and returns lowercase hex.
func (c *XORCipher) SealHex(plaintext []byte, key domain.Key) string {
	return hex.EncodeToString(c.Seal(plaintext, key))
}

// OpenHex decodes a hex ciphertext and opens it.
func (c *XORCipher) OpenHex(ciphertextHex string, key domain.Key) ([]byte, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, apperror.ErrEncoding(fmt.Errorf("decoding ciphertext: %w", err))
	}
	return c.Open(ciphertext, key)
}

func xorKeyStream(in []byte, key domain.Key) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ key[i%domain.KeySize]
	}
	return out
}
