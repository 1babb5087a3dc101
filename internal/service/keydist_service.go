package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"quantum-bank/internal/core/domain"
	"quantum-bank/internal/core/ports"

	"github.com/rs/zerolog"
)

// minTrials is the smallest trial count that could ever sift a full key.
const minTrials = domain.KeySize * 8

// ErrInsufficientSiftedBits is returned when sifting leaves fewer than 256 bits.
var ErrInsufficientSiftedBits = errors.New("insufficient sifted bits")

// CryptoEntropy is the local EntropySource backed by crypto/rand.
type CryptoEntropy struct{}

// Fill reads len(p) bytes from the operating system CSPRNG.
func (CryptoEntropy) Fill(_ context.Context, p []byte) error {
	if _, err := rand.Read(p); err != nil {
		return fmt.Errorf("reading crypto/rand: %w", err)
	}
	return nil
}

// SimulatedQuantumSource derives keys with a BB84 sifting simulation.
//
// Every trial consumes three bits of entropy, read MSB-first: Alice's bit,
// Alice's basis and Bob's basis. Bob measures Alice's bit exactly when the
// bases agree, so only those trials are kept. Kept bits are packed eight per
// byte, most significant first; a trailing partial byte is discarded and the
// key is the first 32 packed bytes.
//
// No eavesdropping (QBER) check is performed.
type SimulatedQuantumSource struct {
	entropy ports.EntropySource
}

// NewSimulatedQuantumSource creates a BB84 source drawing from entropy.
func NewSimulatedQuantumSource(entropy ports.EntropySource) *SimulatedQuantumSource {
	return &SimulatedQuantumSource{entropy: entropy}
}

func (s *SimulatedQuantumSource) Name() string { return domain.KeySourceBB84 }

// Key runs lengthBits BB84 trials and returns the sifted key.
func (s *SimulatedQuantumSource) Key(ctx context.Context, lengthBits uint) (domain.Key, error) {
	var key domain.Key
	if lengthBits < minTrials {
		return key, fmt.Errorf("%w: %d trials cannot yield %d bits", ErrInsufficientSiftedBits, lengthBits, minTrials)
	}

	raw := make([]byte, (3*lengthBits+7)/8)
	if err := s.entropy.Fill(ctx, raw); err != nil {
		return key, fmt.Errorf("drawing trial entropy: %w", err)
	}

	sifted := siftBB84(raw, lengthBits)
	if len(sifted) < domain.KeySize {
		return key, fmt.Errorf("%w: got %d bits", ErrInsufficientSiftedBits, len(sifted)*8)
	}

	copy(key[:], sifted)
	return key, nil
}

// siftBB84 keeps Alice's bit for each trial whose bases match and packs the
// survivors into whole bytes.
func siftBB84(raw []byte, trials uint) []byte {
	out := make([]byte, 0, trials/16+1)
	var cur byte
	var n int
	for i := uint(0); i < trials; i++ {
		aliceBit := bitAt(raw, 3*i)
		aliceBasis := bitAt(raw, 3*i+1)
		bobBasis := bitAt(raw, 3*i+2)
		if aliceBasis != bobBasis {
			continue
		}
		cur = cur<<1 | aliceBit
		n++
		if n == 8 {
			out = append(out, cur)
			cur, n = 0, 0
		}
	}
	return out
}

func bitAt(p []byte, i uint) byte {
	return (p[i/8] >> (7 - i%8)) & 1
}

// SecureRandomSource draws the key directly from crypto/rand.
type SecureRandomSource struct{}

// NewSecureRandomSource creates the secure-random key source.
func NewSecureRandomSource() *SecureRandomSource {
	return &SecureRandomSource{}
}

func (s *SecureRandomSource) Name() string { return domain.KeySourceSecureRandom }

// Key ignores lengthBits; the key is always 32 uniformly random bytes.
func (s *SecureRandomSource) Key(_ context.Context, _ uint) (domain.Key, error) {
	var key domain.Key
	if _, err := rand.Read(key[:]); err != nil {
		return key, fmt.Errorf("reading crypto/rand: %w", err)
	}
	return key, nil
}

// KeyDistributionEngine implements ports.KeyGenerator.
// The primary source runs under a deadline; any failure, including a panic,
// resolves to SecureRandomSource so that callers always receive a key.
type KeyDistributionEngine struct {
	primary  ports.RandomSource
	fallback *SecureRandomSource
	timeout  time.Duration
	log      zerolog.Logger
}

// NewKeyDistributionEngine creates an engine around the given primary source.
func NewKeyDistributionEngine(primary ports.RandomSource, timeout time.Duration, log zerolog.Logger) *KeyDistributionEngine {
	return &KeyDistributionEngine{
		primary:  primary,
		fallback: NewSecureRandomSource(),
		timeout:  timeout,
		log:      log,
	}
}

// GenerateKey returns a 32-byte key and the name of the source that produced it.
func (e *KeyDistributionEngine) GenerateKey(ctx context.Context, lengthBits uint) ports.GeneratedKey {
	key, err := e.runPrimary(ctx, lengthBits)
	if err == nil {
		e.log.Debug().
			Str("source", e.primary.Name()).
			Uint("length_bits", lengthBits).
			Msg("channel key generated")
		return ports.GeneratedKey{Key: key, Source: e.primary.Name()}
	}

	e.log.Warn().
		Err(err).
		Str("primary", e.primary.Name()).
		Uint("length_bits", lengthBits).
		Msg("primary key source failed, falling back to secure random")

	key, err = e.fallback.Key(ctx, lengthBits)
	if err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(fmt.Sprintf("secure random key source: %v", err))
	}
	return ports.GeneratedKey{Key: key, Source: e.fallback.Name(), Fallback: true}
}

type keyResult struct {
	key domain.Key
	err error
}

func (e *KeyDistributionEngine) runPrimary(ctx context.Context, lengthBits uint) (domain.Key, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan keyResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- keyResult{err: fmt.Errorf("primary key source panicked: %v", r)}
			}
		}()
		key, err := e.primary.Key(ctx, lengthBits)
		done <- keyResult{key: key, err: err}
	}()

	select {
	case res := <-done:
		return res.key, res.err
	case <-ctx.Done():
		return domain.Key{}, fmt.Errorf("primary key source: %w", ctx.Err())
	}
}
