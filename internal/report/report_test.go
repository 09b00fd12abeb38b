package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"pocbeacon/internal/beacon"
)

func sampleBeacon() beacon.Beacon {
	return beacon.Beacon{
		Data:      []byte{0x9c, 0x32, 0x22, 0x07, 0xa9, 0xd9},
		Frequency: 904_300_000,
		DataRate:  beacon.SF9BW125,
		RemoteEntropy: beacon.Entropy{
			Version:   0,
			Data:      bytes.Repeat([]byte{0x00}, 32),
			Timestamp: 0,
		},
		LocalEntropy: beacon.Entropy{
			Version:   0,
			Data:      bytes.Repeat([]byte{0xff}, 32),
			Timestamp: 0,
		},
	}
}

func TestBuild(t *testing.T) {
	b := sampleBeacon()
	now := time.Date(2026, 2, 20, 12, 0, 0, 123, time.UTC)

	r, err := Build(b, func() time.Time { return now })
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !bytes.Equal(r.Data, b.Data) {
		t.Errorf("Data: got %x, want %x", r.Data, b.Data)
	}
	if !bytes.Equal(r.LocalEntropy, b.LocalEntropy.Data) {
		t.Error("LocalEntropy does not match beacon")
	}
	if !bytes.Equal(r.RemoteEntropy, b.RemoteEntropy.Data) {
		t.Error("RemoteEntropy does not match beacon")
	}
	if r.Frequency != 904_300_000 {
		t.Errorf("Frequency: got %d, want 904300000", r.Frequency)
	}
	if r.DataRate != int32(beacon.SF9BW125) {
		t.Errorf("DataRate: got %d, want %d", r.DataRate, int32(beacon.SF9BW125))
	}
	if r.TxPower != DefaultTxPower {
		t.Errorf("TxPower: got %d, want %d", r.TxPower, DefaultTxPower)
	}
	if r.Timestamp != uint64(now.UnixNano()) {
		t.Errorf("Timestamp: got %d, want %d", r.Timestamp, now.UnixNano())
	}
	if len(r.PubKey) != 0 || len(r.Signature) != 0 || r.Channel != 0 {
		t.Error("collaborator placeholders should be empty after Build")
	}
}

func TestBuild_ClockError(t *testing.T) {
	_, err := Build(sampleBeacon(), func() time.Time { return time.Unix(-10, 0) })
	if !errors.Is(err, ErrClock) {
		t.Errorf("got %v, want ErrClock", err)
	}
}

func TestBuild_BeaconIDMatches(t *testing.T) {
	b := sampleBeacon()
	r, err := Build(b, time.Now)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if r.BeaconID() != b.ID() {
		t.Errorf("BeaconID: got %s, want %s", r.BeaconID(), b.ID())
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	secret := "test-shared-secret"
	r, err := Build(sampleBeacon(), time.Now)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	packet, err := Encode(r, secret)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(packet) <= SignatureSize {
		t.Fatalf("packet too small: %d bytes", len(packet))
	}

	decoded, err := Decode(packet, secret)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if !bytes.Equal(decoded.Data, r.Data) {
		t.Errorf("Data: got %x, want %x", decoded.Data, r.Data)
	}
	if decoded.Frequency != r.Frequency {
		t.Errorf("Frequency: got %d, want %d", decoded.Frequency, r.Frequency)
	}
	if decoded.DataRate != r.DataRate {
		t.Errorf("DataRate: got %d, want %d", decoded.DataRate, r.DataRate)
	}
	if decoded.Timestamp != r.Timestamp {
		t.Errorf("Timestamp: got %d, want %d", decoded.Timestamp, r.Timestamp)
	}
	if len(decoded.Signature) != SignatureSize {
		t.Errorf("Signature length: got %d, want %d", len(decoded.Signature), SignatureSize)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	r, _ := Build(sampleBeacon(), time.Now)
	packet, err := Encode(r, "correct-secret")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if _, err := Decode(packet, "wrong-secret"); err == nil {
		t.Fatal("expected decode to fail with wrong secret")
	}
}

func TestDecode_Tampered(t *testing.T) {
	secret := "test-shared-secret"
	r, _ := Build(sampleBeacon(), time.Now)
	packet, err := Encode(r, secret)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	packet[len(packet)-1] ^= 0x01
	if _, err := Decode(packet, secret); err == nil {
		t.Fatal("expected decode to fail for tampered packet")
	}
}

func TestDecode_Truncated(t *testing.T) {
	if _, err := Decode(make([]byte, SignatureSize), "secret"); err == nil {
		t.Fatal("expected decode to fail for truncated packet")
	}
}
