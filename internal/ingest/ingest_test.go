package ingest

import (
	"testing"
	"time"

	"pocbeacon/internal/beacon"
	"pocbeacon/internal/report"
)

func validTestReport(now time.Time) report.Report {
	return report.Report{
		LocalEntropy:  []byte{0x01},
		RemoteEntropy: []byte{0x02},
		Data:          []byte{0x9c, 0x32, 0x22, 0x07, 0xa9, 0xd9},
		Frequency:     904_300_000,
		DataRate:      int32(beacon.SF9BW125),
		TxPower:       report.DefaultTxPower,
		Timestamp:     uint64(now.UnixNano()),
	}
}

func TestValidateReport_Valid(t *testing.T) {
	now := time.Now()
	if err := validateReport(validTestReport(now), now); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}
}

func TestValidateReport_PayloadBounds(t *testing.T) {
	now := time.Now()

	short := validTestReport(now)
	short.Data = short.Data[:beacon.MinPayloadSize-1]
	if err := validateReport(short, now); err == nil {
		t.Error("short payload accepted")
	}

	long := validTestReport(now)
	long.Data = make([]byte, beacon.MaxPayloadSize+1)
	if err := validateReport(long, now); err == nil {
		t.Error("oversized payload accepted")
	}
}

func TestValidateReport_UnsupportedDataRate(t *testing.T) {
	now := time.Now()

	r := validTestReport(now)
	r.DataRate = int32(beacon.SF12BW125)
	if err := validateReport(r, now); err == nil {
		t.Error("SF12BW125 accepted despite not being in the beacon set")
	}

	r.DataRate = 99
	if err := validateReport(r, now); err == nil {
		t.Error("unknown datarate tag accepted")
	}
}

func TestValidateReport_ZeroFrequency(t *testing.T) {
	now := time.Now()
	r := validTestReport(now)
	r.Frequency = 0
	if err := validateReport(r, now); err == nil {
		t.Error("zero frequency accepted")
	}
}

func TestValidateReport_StaleTimestamp(t *testing.T) {
	now := time.Now()

	stale := validTestReport(now.Add(-timestampMaxSkew - time.Minute))
	if err := validateReport(stale, now); err == nil {
		t.Error("stale report accepted")
	}

	future := validTestReport(now.Add(timestampMaxSkew + time.Minute))
	if err := validateReport(future, now); err == nil {
		t.Error("far-future report accepted")
	}
}
