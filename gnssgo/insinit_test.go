package gnssgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movingSol(t0 Gtime, pos []float64, dt float64, stat int) Sol {
	rr := Pos2Ecef(pos)
	return Sol{Time: TimeAdd(t0, dt), Rr: [6]float64{rr[0], rr[1], rr[2], 0, 0, 0}, Stat: stat}
}

func TestInitializerNeedsForwardMotion(t *testing.T) {
	opt := DefaultInsOpt()
	ini := NewInitializer(&opt)
	pos := []float64{37.0 * D2R, -122.0 * D2R, 10.0}
	t0 := Gtime{Time: 1000}
	for i := 0; i < 5; i++ {
		// Stationary fixes: position doesn't move, so velocity stays 0.
		ini.AddSol(movingSol(t0, pos, float64(i), SOLQ_SINGLE))
	}
	ins := NewInsState(&opt)
	assert.False(t, ini.TryInit(ins))
	assert.Equal(t, INSS_INIT, ini.State())
}

func TestInitializerVelocityAlignment(t *testing.T) {
	opt := DefaultInsOpt()
	ini := NewInitializer(&opt)
	t0 := Gtime{Time: 1000}
	lat, lon := 37.0*D2R, -122.0*D2R
	for i := 0; i < 5; i++ {
		// 10 m/s northward drift per second.
		pos := []float64{lat + float64(i)*10.0/RE_WGS84, lon, 10.0}
		ini.AddSol(movingSol(t0, pos, float64(i), SOLQ_SINGLE))
	}
	ins := NewInsState(&opt)
	ok := ini.TryInit(ins)
	require.True(t, ok)
	assert.Equal(t, INSS_SOLVED, ins.Stat)
	assert.Equal(t, INSS_SOLVED, ini.State())
	assert.Greater(t, Norm(ins.Ve[:], 3), 5.0)
}

func TestInitializerRejectsStaleGap(t *testing.T) {
	opt := DefaultInsOpt()
	ini := NewInitializer(&opt)
	t0 := Gtime{Time: 1000}
	lat, lon := 37.0*D2R, -122.0*D2R
	pos0 := []float64{lat, lon, 10.0}
	pos1 := []float64{lat + 100.0/RE_WGS84, lon, 10.0}
	ini.AddSol(movingSol(t0, pos0, 0, SOLQ_SINGLE))
	ini.AddSol(movingSol(t0, pos1, 60, SOLQ_SINGLE)) // 60s gap > initMaxDiff
	ins := NewInsState(&opt)
	assert.False(t, ini.TryInit(ins))
}

func TestDualAntennaInitRejectsHighVariance(t *testing.T) {
	opt := DefaultInsOpt()
	ini := NewInitializer(&opt)
	ins := NewInsState(&opt)
	pose := &PoseMeas{Rpy: [3]float64{0, 0, 0}, Var: [3]float64{1.0, 1.0, 1.0}}
	rr := Pos2Ecef([]float64{37 * D2R, -122 * D2R, 10})
	assert.False(t, ini.TryInitDualAnt(ins, pose, rr))
}

func TestDualAntennaInitAccepts(t *testing.T) {
	opt := DefaultInsOpt()
	ini := NewInitializer(&opt)
	ins := NewInsState(&opt)
	pose := &PoseMeas{Rpy: [3]float64{0, 0, 0.1}, Var: [3]float64{1e-6, 1e-6, 1e-6}}
	rr := Pos2Ecef([]float64{37 * D2R, -122 * D2R, 10})
	ok := ini.TryInitDualAnt(ins, pose, rr)
	require.True(t, ok)
	assert.Equal(t, INSS_SOLVED, ins.Stat)
}
