// Package testsupport provides deterministic satellite-geometry test
// doubles for gnssgo's unit and scenario tests. Ephemeris decoding is
// out of scope for the core module; production callers supply their
// own gnssgo.SatPosProvider.
package testsupport

import (
	"math"

	"github.com/skywave-nav/tcgnssins/gnssgo"
)

// Constellation returns n satellites arranged on a hemisphere shell
// above refPos (geodetic, rad/rad/m) at orbital radius r, evenly
// spaced in azimuth with a fixed elevation, so tests get a reproducible
// geometry without a real orbit propagator. Because every satellite
// shares one elevation, a single-point solve cannot separate the
// vertical position from the receiver clock on this geometry alone.
func Constellation(refPos [3]float64, n int, r, elevDeg float64) [][3]float64 {
	rr := gnssgo.Pos2Ecef(refPos[:])
	out := make([][3]float64, n)
	el := elevDeg * gnssgo.D2R
	enu := gnssgo.Xyz2Enu(refPos[:])
	for i := 0; i < n; i++ {
		az := 2 * math.Pi * float64(i) / float64(n)
		up := math.Sin(el)
		horiz := math.Cos(el)
		e := horiz * math.Sin(az)
		nn := horiz * math.Cos(az)
		u := up
		// rotate ENU direction back into ECEF via the transpose of the
		// ECEF->ENU rotation, then place it at distance r from refPos.
		dx := enu[0]*e + enu[3]*nn + enu[6]*u
		dy := enu[1]*e + enu[4]*nn + enu[7]*u
		dz := enu[2]*e + enu[5]*nn + enu[8]*u
		out[i] = [3]float64{rr[0] + dx*r, rr[1] + dy*r, rr[2] + dz*r}
	}
	return out
}

// Provider builds a gnssgo.SatPosProvider returning perfectly known
// positions for the satellites in sats (indexed by observation order)
// with zero clock bias and zero a priori variance inflation, for
// exercising the WLS/RAIM/EKF code paths against a ground truth.
func Provider(sats [][3]float64) gnssgo.SatPosProvider {
	return func(t gnssgo.Gtime, obs []gnssgo.ObsD, nav *gnssgo.Nav, ephOpt int) (rs, dts, vari []float64, svh []int) {
		n := len(obs)
		rs = make([]float64, n*6)
		dts = make([]float64, n*2)
		vari = make([]float64, n)
		svh = make([]int, n)
		for i := 0; i < n && i < len(sats); i++ {
			rs[i*6], rs[i*6+1], rs[i*6+2] = sats[i][0], sats[i][1], sats[i][2]
			vari[i] = 1.0
		}
		return rs, dts, vari, svh
	}
}

// MakeObs builds a minimal single-frequency C1 observation for sat at
// pseudorange pr (m), with snr stored as-is in ObsD.SNR (units of
// gnssgo.SNR_UNIT, 0.001 dB-Hz).
func MakeObs(t gnssgo.Gtime, sat int, pr float64, snr uint16) gnssgo.ObsD {
	var o gnssgo.ObsD
	o.Time = t
	o.Sat = sat
	o.P[0] = pr
	o.Code[0] = gnssgo.CODE_L1C
	o.SNR[0] = snr
	return o
}
