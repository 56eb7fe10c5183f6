package gnssgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkewIsAntisymmetric(t *testing.T) {
	v := []float64{1, 2, 3}
	s := skew(v)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, -s[c*3+r], s[r*3+c], 1e-12)
		}
	}
}

func TestOrthonormalizePreservesIdentity(t *testing.T) {
	var c [9]float64
	c[0], c[4], c[8] = 1, 1, 1
	orthonormalize(&c)
	assert.InDelta(t, 1.0, c[0], 1e-9)
	assert.InDelta(t, 1.0, c[4], 1e-9)
	assert.InDelta(t, 1.0, c[8], 1e-9)
}

func insTightlyCoupledScenario(t *testing.T, rr [3]float64, nsat int) ([]ObsD, *Nav, []float64, []float64, []float64, []int, *InsState, *PrcOpt) {
	t.Helper()
	opt := DefaultPrcOpt()
	opt.IonoOpt = IONOOPT_OFF
	opt.TropOpt = TROPOPT_OFF

	ins := NewInsState(&opt.InsOpt)
	copy(ins.Re[:], rr[:])
	ins.Stat = INSS_SOLVED

	obs, nav, rs, dts, vari, svh := buildScenario(t, rr, 0, nsat)
	return obs, nav, rs, dts, vari, svh, ins, &opt
}

func TestEstInsPrCorrectsPositionError(t *testing.T) {
	pos := []float64{36.0 * D2R, -121.0 * D2R, 50.0}
	truth := [3]float64{}
	copy(truth[:], Pos2Ecef(pos))

	obs, nav, rs, dts, vari, svh, ins, opt := insTightlyCoupledScenario(t, truth, 8)

	// Perturb the inertial position away from truth; the measurement
	// update should pull it back.
	ins.Re[0] += 50.0
	for i := 0; i < ins.Nx; i++ {
		ins.P[i*ins.Nx+i] = 1e4
	}

	err := EstInsPr(obs, nav, ins, opt, rs, dts, vari, svh)
	require.NoError(t, err)
	assert.Less(t, absf(ins.Re[0]-truth[0]), 50.0)
}

func TestEstInsPrNoObservations(t *testing.T) {
	opt := DefaultPrcOpt()
	ins := NewInsState(&opt.InsOpt)
	err := EstInsPr(nil, &Nav{}, ins, &opt, nil, nil, nil, nil)
	require.Error(t, err)
	se, ok := err.(*SolveError)
	require.True(t, ok)
	assert.Equal(t, NoObservations, se.Kind)
}

func TestValInsRejectsLargeInnovation(t *testing.T) {
	assert.False(t, ValIns(100.0, 1.0))
	assert.True(t, ValIns(0.1, 1.0))
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
