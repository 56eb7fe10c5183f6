package gnssgo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildScenario places nsat satellites 2.5e7 m from rr, evenly spaced
// in azimuth at alternating 30/60 deg elevation (so the vertical and
// clock states stay separable), and manufactures exact pseudoranges
// (GeoDist range plus clock offset dtr) so the WLS solve has a known
// ground truth to converge to.
func buildScenario(t *testing.T, rr [3]float64, dtr float64, nsat int) ([]ObsD, *Nav, []float64, []float64, []float64, []int) {
	t.Helper()
	sats := make([][3]float64, nsat)
	pos := Ecef2Pos(rr[:])
	enu := Xyz2Enu(pos)
	for i := 0; i < nsat; i++ {
		az := 2 * PI * float64(i) / float64(nsat)
		el := (30 + 30*float64(i%2)) * D2R
		ce, se := math.Cos(el), math.Sin(el)
		sa, ca := math.Sin(az), math.Cos(az)
		e := [3]float64{
			enu[0]*ce*sa + enu[3]*ce*ca + enu[6]*se,
			enu[1]*ce*sa + enu[4]*ce*ca + enu[7]*se,
			enu[2]*ce*sa + enu[5]*ce*ca + enu[8]*se,
		}
		sats[i] = [3]float64{rr[0] + e[0]*2.5e7, rr[1] + e[1]*2.5e7, rr[2] + e[2]*2.5e7}
	}

	obs := make([]ObsD, nsat)
	rs := make([]float64, nsat*6)
	dts := make([]float64, nsat*2)
	vari := make([]float64, nsat)
	svh := make([]int, nsat)
	for i := 0; i < nsat; i++ {
		rs[i*6], rs[i*6+1], rs[i*6+2] = sats[i][0], sats[i][1], sats[i][2]
		vari[i] = 1.0
		r := GeoDist(sats[i][:], rr[:], make([]float64, 3))
		obs[i] = ObsD{Sat: i + 1}
		obs[i].P[0] = r + dtr
		obs[i].Code[0] = CODE_L1C
		obs[i].SNR[0] = 45000
	}
	nav := &Nav{}
	return obs, nav, rs, dts, vari, svh
}

func TestEstimatePosConvergesToTruth(t *testing.T) {
	rr := [3]float64{}
	pos := []float64{37.4 * D2R, -122.1 * D2R, 30.0}
	copy(rr[:], Pos2Ecef(pos))
	dtr := 1500.0 // meters of clock bias (receiver clock * c)

	obs, nav, rs, dts, vari, svh := buildScenario(t, rr, dtr, 6)
	opt := DefaultPrcOpt()
	opt.IonoOpt = IONOOPT_OFF
	opt.TropOpt = TROPOPT_OFF
	opt.MaxGdop = 0 // disable gdop gate for this synthetic geometry

	sol, _, _, _, err := EstimatePos(obs, nav, &opt, rs, dts, vari, svh)
	require.NoError(t, err)
	require.NotNil(t, sol)

	assert.InDelta(t, rr[0], sol.Rr[0], 1.0)
	assert.InDelta(t, rr[1], sol.Rr[1], 1.0)
	assert.InDelta(t, rr[2], sol.Rr[2], 1.0)
}

func TestEstimatePosRejectsTooFewSats(t *testing.T) {
	rr := [3]float64{}
	pos := []float64{37.4 * D2R, -122.1 * D2R, 30.0}
	copy(rr[:], Pos2Ecef(pos))
	obs, nav, rs, dts, vari, svh := buildScenario(t, rr, 0, 3)
	opt := DefaultPrcOpt()

	_, _, _, _, err := EstimatePos(obs, nav, &opt, rs, dts, vari, svh)
	require.Error(t, err)
	se, ok := err.(*SolveError)
	require.True(t, ok)
	assert.Equal(t, LackOfValidSats, se.Kind)
}

func TestEstimatePosNoObservations(t *testing.T) {
	opt := DefaultPrcOpt()
	_, _, _, _, err := EstimatePos(nil, &Nav{}, &opt, nil, nil, nil, nil)
	require.Error(t, err)
	se, ok := err.(*SolveError)
	require.True(t, ok)
	assert.Equal(t, NoObservations, se.Kind)
}
