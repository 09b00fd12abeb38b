// Package report builds, signs and transmits the wire reports for derived
// beacons.
package report

import (
	"encoding/base64"
	"errors"
	"time"

	"pocbeacon/internal/beacon"
)

// DefaultTxPower is the conducted transmit power recorded in reports, in dBm.
const DefaultTxPower = 27

// ErrClock is returned when the system clock cannot supply a usable report
// timestamp.
var ErrClock = errors.New("system clock read failed")

// Report is the wire message submitted for a transmitted beacon. PubKey,
// Channel and Signature are placeholders filled by the key-management and
// signing collaborators; Signature is populated on decode from the packet
// prefix.
type Report struct {
	PubKey        []byte `msgpack:"pub_key"`
	LocalEntropy  []byte `msgpack:"local_entropy"`
	RemoteEntropy []byte `msgpack:"remote_entropy"`
	Data          []byte `msgpack:"data"`
	Frequency     uint64 `msgpack:"frequency"`
	Channel       int32  `msgpack:"channel"`
	DataRate      int32  `msgpack:"datarate"`
	TxPower       int32  `msgpack:"tx_power"`
	Timestamp     uint64 `msgpack:"timestamp"`
	Signature     []byte `msgpack:"signature"`
}

// Build constructs the report for a derived beacon. The timestamp is the
// wall-clock time at report construction in nanoseconds, not anything taken
// from the beacon itself.
func Build(b beacon.Beacon, now func() time.Time) (Report, error) {
	t := now()
	if t.UnixNano() <= 0 {
		return Report{}, ErrClock
	}

	return Report{
		LocalEntropy:  b.LocalEntropy.Data,
		RemoteEntropy: b.RemoteEntropy.Data,
		Data:          b.Data,
		Frequency:     b.Frequency,
		DataRate:      int32(b.DataRate),
		TxPower:       DefaultTxPower,
		Timestamp:     uint64(t.UnixNano()),
	}, nil
}

// BeaconID returns the base64 identifier of the beacon this report covers,
// matching beacon.Beacon.ID for the same payload.
func (r Report) BeaconID() string {
	return base64.StdEncoding.EncodeToString(r.Data)
}
