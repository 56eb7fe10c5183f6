package gnssgo

import "fmt"

// SatSys returns the navigation-system bitmask for sat and, if prn is
// non-nil, writes the system PRN
func SatSys(sat int, prn *int) int {
	sys := SYS_NONE
	p := 0
	n := sat

	switch {
	case n <= 0 || n > MAXSAT:
		// out of range, leave sys/p zero

	case n <= NSATGPS:
		sys, p = SYS_GPS, n+MINPRNGPS-1

	case n <= NSATGPS+NSATGLO:
		n -= NSATGPS
		sys, p = SYS_GLO, n+MINPRNGLO-1

	case n <= NSATGPS+NSATGLO+NSATGAL:
		n -= NSATGPS + NSATGLO
		sys, p = SYS_GAL, n+MINPRNGAL-1

	case n <= NSATGPS+NSATGLO+NSATGAL+NSATQZS:
		n -= NSATGPS + NSATGLO + NSATGAL
		sys, p = SYS_QZS, n+MINPRNQZS-1

	case n <= NSATGPS+NSATGLO+NSATGAL+NSATQZS+NSATCMP:
		n -= NSATGPS + NSATGLO + NSATGAL + NSATQZS
		sys, p = SYS_CMP, n+MINPRNCMP-1

	case n <= NSATGPS+NSATGLO+NSATGAL+NSATQZS+NSATCMP+NSATIRN:
		n -= NSATGPS + NSATGLO + NSATGAL + NSATQZS + NSATCMP
		sys, p = SYS_IRN, n+MINPRNIRN-1

	case n <= NSATGPS+NSATGLO+NSATGAL+NSATQZS+NSATCMP+NSATIRN+NSATSBS:
		n -= NSATGPS + NSATGLO + NSATGAL + NSATQZS + NSATCMP + NSATIRN
		sys, p = SYS_SBS, n+MINPRNSBS-1
	}

	if prn != nil {
		*prn = p
	}
	return sys
}

// SatNo returns the internal satellite number for the (sys, prn) pair,
// the inverse of SatSys, or 0 if out of range
func SatNo(sys, prn int) int {
	switch sys {
	case SYS_GPS:
		if prn >= MINPRNGPS && prn <= MAXPRNGPS {
			return prn - MINPRNGPS + 1
		}
	case SYS_GLO:
		if prn >= MINPRNGLO && prn <= MAXPRNGLO {
			return NSATGPS + prn - MINPRNGLO + 1
		}
	case SYS_GAL:
		if prn >= MINPRNGAL && prn <= MAXPRNGAL {
			return NSATGPS + NSATGLO + prn - MINPRNGAL + 1
		}
	case SYS_QZS:
		if prn >= MINPRNQZS && prn <= MAXPRNQZS {
			return NSATGPS + NSATGLO + NSATGAL + prn - MINPRNQZS + 1
		}
	case SYS_CMP:
		if prn >= MINPRNCMP && prn <= MAXPRNCMP {
			return NSATGPS + NSATGLO + NSATGAL + NSATQZS + prn - MINPRNCMP + 1
		}
	case SYS_IRN:
		if prn >= MINPRNIRN && prn <= MAXPRNIRN {
			return NSATGPS + NSATGLO + NSATGAL + NSATQZS + NSATCMP + prn - MINPRNIRN + 1
		}
	case SYS_SBS:
		if prn >= MINPRNSBS && prn <= MAXPRNSBS {
			return NSATGPS + NSATGLO + NSATGAL + NSATQZS + NSATCMP + NSATIRN + prn - MINPRNSBS + 1
		}
	}
	return 0
}

// SatNo2Id renders a satellite number as a short id like "G05"/"R12".
func SatNo2Id(sat int) string {
	var prn int
	sys := SatSys(sat, &prn)
	switch sys {
	case SYS_GPS:
		return fmt.Sprintf("G%02d", prn-MINPRNGPS+1)
	case SYS_GLO:
		return fmt.Sprintf("R%02d", prn-MINPRNGLO+1)
	case SYS_GAL:
		return fmt.Sprintf("E%02d", prn-MINPRNGAL+1)
	case SYS_QZS:
		return fmt.Sprintf("J%02d", prn-MINPRNQZS+1)
	case SYS_CMP:
		return fmt.Sprintf("C%02d", prn-MINPRNCMP+1)
	case SYS_IRN:
		return fmt.Sprintf("I%02d", prn-MINPRNIRN+1)
	case SYS_SBS:
		return fmt.Sprintf("S%02d", prn-MINPRNSBS+1)
	}
	return ""
}

// TestSnr applies the per-frequency SNR mask, returning true (snr too
// low, exclude) when the mask is enabled and the observed SNR falls
// below the interpolated threshold at the given elevation, using the
// 9-bucket 10-degree mask table.
func TestSnr(rover bool, freq int, el, snr float64, mask *SnrMask) bool {
	if mask == nil || !mask.Enable || freq < 0 || freq >= NFREQ {
		return false
	}
	// Mask nodes sit at 5, 15, ..., 85 deg.
	a := (el*R2D - 5.0) / 10.0
	if a <= 0 {
		return snr < mask.Mask[freq][0]
	}
	i := int(a)
	if i >= 8 {
		return snr < mask.Mask[freq][8]
	}
	frac := a - float64(i)
	minsnr := mask.Mask[freq][i]*(1-frac) + mask.Mask[freq][i+1]*frac
	return snr < minsnr
}

// Sat2Freq returns the carrier frequency (Hz) for sat's given code,
// covering the GPS/GAL/BDS/QZS/GLO bands this core's
// pseudorange/iono-free combination actually forms.
func Sat2Freq(sat int, code uint8, nav *Nav) float64 {
	sys := SatSys(sat, nil)
	switch sys {
	case SYS_GPS, SYS_QZS:
		switch {
		case code == CODE_L1C || code == CODE_L1P:
			return FREQ1
		case code == CODE_L2C:
			return FREQ2
		default:
			return FREQ5
		}
	case SYS_GAL:
		if code == CODE_L1C {
			return FREQ1
		}
		return FREQ5
	case SYS_CMP:
		if code == CODE_L2I {
			return FREQ1_CMP
		}
		return FREQ2_CMP
	case SYS_GLO:
		// Frequency-division channels are out of scope (no production
		// ephemeris/almanac decoder feeds channel numbers into this
		// core); fall back to the nominal FDMA centre frequency.
		if code == CODE_L2C {
			return FREQ2_GLO
		}
		return FREQ1_GLO
	}
	return 0
}

// SatExclude reports whether sat should be excluded given its a
// priori variance and health flag,
// trimmed to the checks this core needs (manual exclusion table,
// unhealthy flag, implausible variance).
func SatExclude(sat int, vari float64, svh int, opt *PrcOpt) bool {
	if opt != nil && sat > 0 && sat <= MAXSAT {
		if opt.ExSats[sat-1] == 1 {
			return true
		}
		if opt.ExSats[sat-1] == 2 {
			return false
		}
	}
	sys := SatSys(sat, nil)
	if opt != nil && opt.NavSys != 0 && opt.NavSys&sys == 0 {
		return true
	}
	if svh != 0 {
		return true
	}
	if vari > SQR(300.0) {
		return true
	}
	return false
}
