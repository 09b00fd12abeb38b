package beacon

import "testing"

func TestDataRate_WireTags(t *testing.T) {
	// Wire tags follow the datarate registry numbering and must never change.
	tags := map[DataRate]int32{
		SF12BW125: 0,
		SF11BW125: 1,
		SF10BW125: 2,
		SF9BW125:  3,
		SF8BW125:  4,
		SF7BW125:  5,
	}
	for dr, want := range tags {
		if int32(dr) != want {
			t.Errorf("%s: wire tag %d, want %d", dr, int32(dr), want)
		}
	}
}

func TestDataRate_String(t *testing.T) {
	if SF7BW125.String() != "SF7BW125" {
		t.Errorf("got %s, want SF7BW125", SF7BW125)
	}
	if DataRate(42).String() != "UNKNOWN" {
		t.Errorf("got %s, want UNKNOWN", DataRate(42))
	}
}

func TestBeaconDataRates_OrderFixed(t *testing.T) {
	want := []DataRate{SF7BW125, SF8BW125, SF9BW125, SF10BW125}
	if len(BeaconDataRates) != len(want) {
		t.Fatalf("got %d datarates, want %d", len(BeaconDataRates), len(want))
	}
	for i, dr := range want {
		if BeaconDataRates[i] != dr {
			t.Errorf("index %d: got %s, want %s", i, BeaconDataRates[i], dr)
		}
	}
}
