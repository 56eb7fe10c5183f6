package gnssgo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcefPosRoundTrip(t *testing.T) {
	pos := []float64{37.5 * D2R, -122.3 * D2R, 120.0}
	r := Pos2Ecef(pos)
	back := Ecef2Pos(r)

	require.InDelta(t, pos[0], back[0], 1e-9)
	require.InDelta(t, pos[1], back[1], 1e-9)
	require.InDelta(t, pos[2], back[2], 1e-6)
}

func TestGeoDistPositive(t *testing.T) {
	rs := []float64{26560000, 0, 0}
	rr := []float64{RE_WGS84, 0, 0}
	e := make([]float64, 3)
	r := GeoDist(rs, rr, e)
	assert.Greater(t, r, 0.0)
	assert.InDelta(t, 1.0, Norm(e, 3), 1e-9)
}

func TestGeoDistRejectsSubsurfaceSat(t *testing.T) {
	rs := []float64{1000, 0, 0}
	rr := []float64{RE_WGS84, 0, 0}
	e := make([]float64, 3)
	assert.Equal(t, -1.0, GeoDist(rs, rr, e))
}

func TestSatAzelZenith(t *testing.T) {
	pos := []float64{0, 0, 0}
	e := []float64{1, 0, 0} // local up at lat 0, lon 0 is ECEF +x
	azel := make([]float64, 2)
	el := SatAzel(pos, e, azel)
	assert.InDelta(t, math.Pi/2, el, 1e-9)
}

func TestDopsRequiresFourSats(t *testing.T) {
	azel := []float64{0, 0.2, 1, 0.3, 2, 0.25}
	dop := Dops(3, azel, 0.1)
	assert.Equal(t, [4]float64{}, dop)
}
