package beacon

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// Sampler draws uniform values from a random stream. The derivation consumes
// draws in a fixed order, so an implementation must be deterministic for a
// given seed: same seed, same draw sequence.
type Sampler interface {
	// UintN returns a uniform value in [0, n). n must be positive.
	UintN(n uint32) uint32
	// IntRange returns a uniform value in the inclusive range [min, max].
	IntRange(min, max int) int
}

// chachaSampler draws from a ChaCha20 keystream (zero nonce, counter zero)
// keyed with the 32-byte seed. Each draw reads the next four keystream bytes
// as a little-endian uint32 and reduces it by modulo-rejection: values below
// 2^32 mod n are discarded so the result is unbiased.
type chachaSampler struct {
	stream *chacha20.Cipher
}

// NewSampler returns the production Sampler for the given seed.
func NewSampler(seed [32]byte) (Sampler, error) {
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &chachaSampler{stream: stream}, nil
}

func (s *chachaSampler) next32() uint32 {
	var buf [4]byte
	s.stream.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

func (s *chachaSampler) UintN(n uint32) uint32 {
	threshold := -n % n // 2^32 mod n in uint32 arithmetic
	for {
		if v := s.next32(); v >= threshold {
			return v % n
		}
	}
}

func (s *chachaSampler) IntRange(min, max int) int {
	return min + int(s.UintN(uint32(max-min+1)))
}
