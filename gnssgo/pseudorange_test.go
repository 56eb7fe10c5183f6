package gnssgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrangeSingleFrequency(t *testing.T) {
	nav := &Nav{}
	opt := DefaultPrcOpt()
	opt.IonoOpt = IONOOPT_BRDC
	sat := SatNo(SYS_GPS, 10)
	obs := &ObsD{Sat: sat}
	obs.P[0] = 2.1e7
	obs.Code[0] = CODE_L1C

	pr, vari := Prange(obs, nav, &opt)
	assert.Equal(t, 2.1e7, pr)
	assert.Greater(t, vari, 0.0)
}

func TestPrangeNoCodeReturnsZero(t *testing.T) {
	nav := &Nav{}
	opt := DefaultPrcOpt()
	sat := SatNo(SYS_GPS, 10)
	obs := &ObsD{Sat: sat}

	pr, _ := Prange(obs, nav, &opt)
	assert.Equal(t, 0.0, pr)
}

func TestPrangeIonoFreeCombination(t *testing.T) {
	nav := &Nav{}
	opt := DefaultPrcOpt()
	opt.IonoOpt = IONOOPT_IFLC
	sat := SatNo(SYS_GPS, 10)
	obs := &ObsD{Sat: sat}
	obs.P[0] = 2.1e7
	obs.P[1] = 2.1e7 + 5.0 // L2 carries more ionospheric delay
	obs.Code[0] = CODE_L1C
	obs.Code[1] = CODE_L2C

	pr, _ := Prange(obs, nav, &opt)
	assert.NotEqual(t, 0.0, pr)
	assert.InDelta(t, 2.1e7, pr, 50.0)
}

func TestGetTgdGlonassUsesEphemerisDelay(t *testing.T) {
	nav := &Nav{Geph: []GEph{{Sat: SatNo(SYS_GLO, 1), DTaun: 1e-8}}}
	tgd := nav.GetTgd(SatNo(SYS_GLO, 1), 0)
	assert.InDelta(t, -1e-8*CLIGHT, tgd, 1e-6)
}

func TestVarianceErrInflatesForGlonass(t *testing.T) {
	opt := DefaultPrcOpt()
	gps := VarianceErr(&opt, 45*D2R, SYS_GPS)
	glo := VarianceErr(&opt, 45*D2R, SYS_GLO)
	assert.Greater(t, glo, gps)
}
