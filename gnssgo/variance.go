package gnssgo

import "math"

// VarianceErr returns the a priori pseudorange measurement variance
// for a satellite at elevation el (rad), combining the elevation-
// dependent term with the per-system inflation factor (EFACT_GLO,
// EFACT_SBS).
func VarianceErr(opt *PrcOpt, el float64, sys int) float64 {
	var fact float64
	switch sys {
	case SYS_GLO:
		fact = EFACT_GLO
	case SYS_SBS:
		fact = EFACT_SBS
	default:
		fact = EFACT_GPS
	}
	a, b := opt.Err[1], opt.Err[2]
	sinel := math.Sin(el)
	if sinel <= 0 {
		sinel = 1e-6
	}
	return SQR(fact) * (SQR(a) + SQR(b/sinel))
}

// snrMaskPass reports whether obs passes the configured SNR mask at
// elevation el.
func snrMaskPass(obs *ObsD, azel []float64, opt *PrcOpt) bool {
	if azel[1] < opt.Elmin {
		return false
	}
	if !opt.SnrMask.Enable {
		return true
	}
	snr := float64(obs.SNR[0]) * SNR_UNIT
	return !TestSnr(true, 0, azel[1], snr, &opt.SnrMask)
}
