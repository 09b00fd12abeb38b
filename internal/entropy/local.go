// Package entropy supplies the two entropy inputs consumed by the beacon
// derivation: a local value drawn from the operating system's random source
// and a remote value fetched from an entropy service.
package entropy

import (
	"crypto/rand"
	"fmt"
	"time"

	"pocbeacon/internal/beacon"
)

// LocalVersion is the derivation scheme version stamped on locally
// generated entropy.
const LocalVersion = 0

// LocalDataSize is the number of random bytes in a local entropy value.
const LocalDataSize = 32

// Local returns fresh local entropy from the system random source, stamped
// with the current time.
func Local() (beacon.Entropy, error) {
	data := make([]byte, LocalDataSize)
	if _, err := rand.Read(data); err != nil {
		return beacon.Entropy{}, fmt.Errorf("reading system randomness: %w", err)
	}

	return beacon.Entropy{
		Version:   LocalVersion,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}, nil
}
