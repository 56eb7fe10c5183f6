package gnssgo

// gnssNX is the GNSS-only state dimension: ECEF position (3) plus one
// receiver-clock offset per constellation (GPS, GLO, GAL, BDS).
const gnssNX = 3 + 4

// clkIdx maps a navigation-system bitmask to its receiver-clock state
// index within the GNSS-only state vector (unrecognised/QZS/IRN/SBAS
// alias onto the GPS clock).
func clkIdx(sys int) int {
	switch sys {
	case SYS_GLO:
		return 1
	case SYS_GAL:
		return 2
	case SYS_CMP:
		return 3
	default:
		return 0
	}
}

// Residuals assembles the pseudorange residual vector v, design
// matrix H (row-major, gnssNX columns), and matching measurement
// variance R for the GNSS-only single-point solve, at the current
// linearisation point x. rs/dts/vari/svh are the satellite
// position/clock/variance/health quadruple from a SatPosProvider.
//
// A zero-innovation anchoring row is appended for every one of
// {GPS,GLO,GAL,BDS} with no satellite surviving the per-sat loop, so
// the corresponding receiver-clock column is never left all-zero: a
// GPS-only epoch would otherwise make H^T*H singular on the unobserved
// GLO/GAL/BDS clock states.
func Residuals(obs []ObsD, nav *Nav, x []float64, opt *PrcOpt, rs, dts, vari []float64, svh []int) (v, H, R, azel []float64, vsat []int, resp []float64, ns int) {
	n := len(obs)
	azel = make([]float64, 2*n)
	vsat = make([]int, n)
	resp = make([]float64, n)
	v = make([]float64, 0, n+4)
	H = make([]float64, 0, (n+4)*gnssNX)
	R = make([]float64, 0, n+4)

	pos := Ecef2Pos(x[:3])
	var sysSeen [4]bool

	for i := 0; i < n; i++ {
		sys := SatSys(obs[i].Sat, nil)
		if sys == SYS_NONE {
			continue
		}
		if i < n-1 && obs[i].Sat == obs[i+1].Sat {
			// Duplicate (t,sat) record: skip both copies.
			i++
			continue
		}
		if rs[i*6] == 0 && rs[i*6+1] == 0 && rs[i*6+2] == 0 {
			continue
		}
		if SatExclude(obs[i].Sat, vari[i], svh[i], opt) {
			continue
		}

		e := make([]float64, 3)
		r := GeoDist(rs[i*6:i*6+3], x[:3], e)
		if r <= 0 {
			continue
		}
		el := SatAzel(pos, e, azel[i*2:i*2+2])
		if el < opt.Elmin {
			continue
		}

		pr, _ := Prange(&obs[i], nav, opt)
		if pr == 0 {
			continue
		}
		if !snrMaskPass(&obs[i], azel[i*2:i*2+2], opt) {
			continue
		}

		ion, _ := nav.IonoCorr(obs[i].Time, pos, azel[i*2:i*2+2], opt.IonoOpt)
		if freq := Sat2Freq(obs[i].Sat, obs[i].Code[0], nav); freq > 0 {
			// IonoCorr returns the L1-referenced delay; rescale onto
			// the observation's own carrier.
			ion *= SQR(FREQ1 / freq)
		}
		trp := 0.0
		if opt.TropOpt != TROPOPT_OFF {
			trp = TropModel(pos, azel[i*2:i*2+2], 0.7)
		}

		ci := clkIdx(sys)
		dtr := x[3+ci]

		row := make([]float64, gnssNX)
		for k := 0; k < 3; k++ {
			row[k] = -e[k]
		}
		row[3+ci] = 1.0

		resid := pr - (r + dtr - CLIGHT*dts[i*2] + ion + trp)
		v = append(v, resid)
		H = append(H, row...)
		R = append(R, VarianceErr(opt, el, sys)+vari[i])

		resp[i] = resid
		vsat[i] = 1
		sysSeen[ci] = true
		ns++
	}

	for ci := 0; ci < 4; ci++ {
		if sysSeen[ci] {
			continue
		}
		row := make([]float64, gnssNX)
		row[3+ci] = 1.0
		v = append(v, 0)
		H = append(H, row...)
		R = append(R, 0.01)
	}

	return v, H, R, azel, vsat, resp, ns
}
