package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacilitySeedFromEnv(t *testing.T) {
	t.Setenv("FACILITY_SEED_PATH", "")
	t.Setenv("FACILITY_NAME", "Sendai depot")
	t.Setenv("FACILITY_ADDRESS", "宮城県仙台市青葉区")
	t.Setenv("FACILITY_LATITUDE", "38.0")
	t.Setenv("FACILITY_LONGITUDE", "140.0")

	seed, ok, err := facilitySeed()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Sendai depot", seed.Name)
	assert.Equal(t, 38.0, seed.Latitude)
	assert.Equal(t, 140.0, seed.Longitude)
}

func TestFacilitySeedWithoutName(t *testing.T) {
	t.Setenv("FACILITY_SEED_PATH", "")
	t.Setenv("FACILITY_NAME", "")

	_, ok, err := facilitySeed()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFacilitySeedRequiresCoordinates(t *testing.T) {
	cases := []struct {
		name string
		lat  string
		lon  string
	}{
		{name: "missing latitude", lat: "", lon: "140.0"},
		{name: "missing longitude", lat: "38.0", lon: ""},
		{name: "bad latitude", lat: "north", lon: "140.0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("FACILITY_SEED_PATH", "")
			t.Setenv("FACILITY_NAME", "Sendai depot")
			t.Setenv("FACILITY_LATITUDE", tc.lat)
			t.Setenv("FACILITY_LONGITUDE", tc.lon)

			_, ok, err := facilitySeed()
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}
