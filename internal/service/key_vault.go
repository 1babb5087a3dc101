package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// AESKeyVault implements ports.KeyVault using AES-256-GCM.
// The channel id is bound as additional data, so a wrapped key copied onto
// another channel row fails to unwrap.
type AESKeyVault struct {
	aead cipher.AEAD
}

// NewAESKeyVault creates a vault from a 64-character hex master key.
func NewAESKeyVault(hexKey string) (*AESKeyVault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &AESKeyVault{aead: aead}, nil
}

// Wrap encrypts a channel key's hex form. Output is hex: nonce || ciphertext || tag.
func (v *AESKeyVault) Wrap(channelID uuid.UUID, keyHex string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(keyHex)+v.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(keyHex), channelID[:])
	return hex.EncodeToString(sealed), nil
}

// Unwrap reverses Wrap for the same channel id and returns the key's hex
// form as it was sealed.
func (v *AESKeyVault) Unwrap(channelID uuid.UUID, wrapped string) (string, error) {
	raw, err := hex.DecodeString(wrapped)
	if err != nil {
		return "", fmt.Errorf("decoding wrapped key: %w", err)
	}
	nonceSize := v.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("wrapped key too short")
	}

	plain, err := v.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], channelID[:])
	if err != nil {
		return "", fmt.Errorf("unwrapping key: %w", err)
	}
	return string(plain), nil
}
