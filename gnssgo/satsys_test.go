package gnssgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSatSysSatNoRoundTrip(t *testing.T) {
	cases := []struct {
		sys, prn int
	}{
		{SYS_GPS, 5},
		{SYS_GPS, 32},
		{SYS_GLO, 1},
		{SYS_GAL, 36},
		{SYS_QZS, 194},
		{SYS_CMP, 40},
	}
	for _, c := range cases {
		sat := SatNo(c.sys, c.prn)
		assert.NotZero(t, sat, "SatNo(%d,%d)", c.sys, c.prn)
		var prn int
		sys := SatSys(sat, &prn)
		assert.Equal(t, c.sys, sys)
		assert.Equal(t, c.prn, prn)
	}
}

func TestSatSysOutOfRange(t *testing.T) {
	assert.Equal(t, SYS_NONE, SatSys(0, nil))
	assert.Equal(t, SYS_NONE, SatSys(MAXSAT+1, nil))
}

func TestSatExcludeManualTable(t *testing.T) {
	opt := DefaultPrcOpt()
	sat := SatNo(SYS_GPS, 5)
	opt.ExSats[sat-1] = 1
	assert.True(t, SatExclude(sat, 1.0, 0, &opt))
}

func TestSatExcludeUnhealthy(t *testing.T) {
	opt := DefaultPrcOpt()
	sat := SatNo(SYS_GPS, 5)
	assert.True(t, SatExclude(sat, 1.0, 1, &opt))
	assert.False(t, SatExclude(sat, 1.0, 0, &opt))
}
