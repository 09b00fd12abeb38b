// Package beacon implements the deterministic beacon derivation at the heart
// of the proof-of-coverage protocol: two entropy values are mixed into a
// digest, the digest seeds a reproducible random stream, and the stream picks
// the transmit frequency, payload size and datarate in a fixed order. Any
// party holding the same entropy pair recomputes the identical beacon.
package beacon

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	// MinPayloadSize and MaxPayloadSize bound the beacon payload length in bytes.
	MinPayloadSize = 5
	MaxPayloadSize = 10
)

// BeaconDataRates is the ordered set of datarates a beacon may select.
// SF11 and SF12 are excluded because they are not usable in every region.
var BeaconDataRates = []DataRate{SF7BW125, SF8BW125, SF9BW125, SF10BW125}

// RegionParameter describes one allowed transmit channel in a region's
// channel plan. The ordering of a channel plan is part of the derivation
// contract: all parties must supply the same sequence.
type RegionParameter struct {
	ChannelFrequency uint64
}

// Beacon is the result of a derivation. It is immutable once constructed;
// the two input entropy values are retained so the downstream report carries
// them for independent re-verification.
type Beacon struct {
	Data      []byte
	Frequency uint64
	DataRate  DataRate

	RemoteEntropy Entropy
	LocalEntropy  Entropy
}

// Derive computes the beacon for a remote and local entropy pair against the
// given channel plan. The two entropy versions are checked for equality and
// must be a supported scheme.
//
// Version 0 beacons mix the remote and local entropy (data and timestamp)
// through SHA-256, use the 32-byte digest to seed a ChaCha20 keystream, and
// draw a channel frequency, a payload size between MinPayloadSize and
// MaxPayloadSize, and a datarate from the stream. The draw order matters:
// the stream is consumed in exactly that sequence. The payload is the digest
// truncated to the drawn size.
func Derive(remote, local Entropy, params []RegionParameter) (Beacon, error) {
	if remote.Version != local.Version {
		return Beacon{}, ErrInvalidVersion
	}
	switch remote.Version {
	case 0, 1:
	default:
		return Beacon{}, ErrInvalidVersion
	}

	digest := mixDigest(remote, local)
	smp, err := NewSampler(digest)
	if err != nil {
		return Beacon{}, fmt.Errorf("seeding sampler: %w", err)
	}
	return deriveFrom(remote, local, params, digest, smp)
}

// deriveFrom runs the selection sequence against an explicit sampler. Split
// out from Derive so the draw order can be exercised with a scripted sampler.
func deriveFrom(remote, local Entropy, params []RegionParameter, digest [sha256.Size]byte, smp Sampler) (Beacon, error) {
	frequency, err := randFrequency(params, smp)
	if err != nil {
		return Beacon{}, err
	}

	size := smp.IntRange(MinPayloadSize, MaxPayloadSize)

	datarate, err := randDataRate(BeaconDataRates, smp)
	if err != nil {
		return Beacon{}, err
	}

	return Beacon{
		Data:          digest[:size],
		Frequency:     frequency,
		DataRate:      datarate,
		RemoteEntropy: remote,
		LocalEntropy:  local,
	}, nil
}

// mixDigest hashes the remote then the local entropy into the 32-byte
// mixing digest. The digest doubles as the sampler seed and, truncated, as
// the beacon payload.
func mixDigest(remote, local Entropy) [sha256.Size]byte {
	h := sha256.New()
	remote.digest(h)
	local.digest(h)

	var d [sha256.Size]byte
	h.Sum(d[:0])
	return d
}

// randFrequency picks one channel frequency from the plan. No randomness is
// consumed when the plan is empty.
func randFrequency(params []RegionParameter, smp Sampler) (uint64, error) {
	if len(params) == 0 {
		return 0, ErrNoRegionParams
	}
	return params[smp.UintN(uint32(len(params)))].ChannelFrequency, nil
}

func randDataRate(rates []DataRate, smp Sampler) (DataRate, error) {
	if len(rates) == 0 {
		return 0, ErrNoDataRate
	}
	return rates[smp.UintN(uint32(len(rates)))], nil
}

// ID returns the base64 (standard alphabet) encoding of the beacon payload,
// used as a stable external identifier and deduplication key.
func (b Beacon) ID() string {
	return base64.StdEncoding.EncodeToString(b.Data)
}
