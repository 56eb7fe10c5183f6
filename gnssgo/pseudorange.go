package gnssgo

// GetTgd returns the group-delay bias (m) for sat's given frequency
// index: GPS/QZS/GAL scale TGD by CLIGHT, GLONASS uses the ephemeris
// DTaun term.
func (nav *Nav) GetTgd(sat int, dtype int) float64 {
	sys := SatSys(sat, nil)
	if sys == SYS_GLO {
		if ge := nav.GetGEph(sat); ge != nil {
			return -ge.DTaun * CLIGHT
		}
		return 0
	}
	eph := nav.GetEph(sat)
	if eph == nil {
		return 0
	}
	if dtype < 0 || dtype >= len(eph.Tgd) {
		dtype = 0
	}
	return eph.Tgd[dtype] * CLIGHT
}

// Prange forms the bias-corrected pseudorange for obs: the
// dual-frequency iono-free linear combination when opt.IonoOpt is
// IONOOPT_IFLC and both codes are present, otherwise a single-frequency
// TGD-corrected range (the DCB table in nav is not applied). Returns 0
// and a zero variance contribution if no usable code observation exists.
func Prange(obs *ObsD, nav *Nav, opt *PrcOpt) (pr float64, vari float64) {
	sys := SatSys(obs.Sat, nil)
	var f2 int
	switch sys {
	case SYS_GAL:
		f2 = 2 // E5a
	default:
		f2 = 1 // L2/B2
	}

	P1, P2 := obs.P[0], obs.P[f2]
	if P1 == 0 {
		return 0, 0
	}

	// Apply the broadcast TGD correction (single-frequency path),
	// mirroring Prange's branch when only L1 is tracked.
	var tgd float64
	if sys == SYS_GPS || sys == SYS_QZS {
		tgd = nav.GetTgd(obs.Sat, 0)
		P1 -= tgd
	} else if sys == SYS_GAL {
		tgd = nav.GetTgd(obs.Sat, 0)
		P1 -= tgd
	} else if sys == SYS_GLO {
		tgd = nav.GetTgd(obs.Sat, 0)
		P1 -= tgd
	} else if sys == SYS_CMP {
		tgd = nav.GetTgd(obs.Sat, 0)
		P1 -= tgd
	}

	if P2 == 0 || opt.IonoOpt != IONOOPT_IFLC {
		return P1, SQR(opt.Err[1])
	}

	// Dual-frequency iono-free combination, gamma = (f1/f2)^2.
	f1 := Sat2Freq(obs.Sat, obs.Code[0], nav)
	freq2 := Sat2Freq(obs.Sat, obs.Code[f2], nav)
	if f1 == 0 || freq2 == 0 {
		return P1, SQR(opt.Err[1])
	}
	gamma := SQR(f1 / freq2)
	pr = (gamma*obs.P[0] - P2) / (gamma - 1.0)
	return pr, SQR(opt.Err[1]) * 2.0
}
