// Package region provides named beacon channel plans. A plan is an ordered
// frequency list; the ordering is part of the derivation contract, so plans
// must match on every party reproducing a beacon.
package region

import (
	"fmt"
	"sort"
	"strings"

	"pocbeacon/internal/beacon"
)

var plans = map[string][]uint64{
	"US915": {
		903_900_000, 904_100_000, 904_300_000, 904_500_000,
		904_700_000, 904_900_000, 905_100_000, 905_300_000,
	},
	"EU868": {
		867_100_000, 867_300_000, 867_500_000, 867_700_000,
		867_900_000, 868_100_000, 868_300_000, 868_500_000,
	},
	"AU915": {
		915_200_000, 915_400_000, 915_600_000, 915_800_000,
		916_000_000, 916_200_000, 916_400_000, 916_600_000,
	},
	"AS923": {
		923_200_000, 923_400_000, 923_600_000, 923_800_000,
		924_000_000, 924_200_000, 924_400_000, 924_600_000,
	},
}

// Plan returns the channel plan for a region name. Names are
// case-insensitive.
func Plan(name string) ([]beacon.RegionParameter, error) {
	freqs, ok := plans[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("unknown region %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return FromFrequencies(freqs), nil
}

// FromFrequencies builds a channel plan from an explicit frequency list,
// preserving order.
func FromFrequencies(freqs []uint64) []beacon.RegionParameter {
	params := make([]beacon.RegionParameter, len(freqs))
	for i, f := range freqs {
		params[i] = beacon.RegionParameter{ChannelFrequency: f}
	}
	return params
}

// Names returns the supported region names, sorted.
func Names() []string {
	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
