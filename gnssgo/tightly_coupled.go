package gnssgo

// skew returns the 3x3 skew-symmetric (cross-product) matrix of v,
// row-major, used throughout the attitude Jacobians below.
func skew(v []float64) []float64 {
	return []float64{
		0, -v[2], v[1],
		v[2], 0, -v[0],
		-v[1], v[0], 0,
	}
}

func matMul3(a, b []float64) []float64 {
	out := make([]float64, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a[r*3+k] * b[k*3+c]
			}
			out[r*3+c] = s
		}
	}
	return out
}

func matVec3(m, v []float64) []float64 {
	out := make([]float64, 3)
	for r := 0; r < 3; r++ {
		out[r] = m[r*3]*v[0] + m[r*3+1]*v[1] + m[r*3+2]*v[2]
	}
	return out
}

// jacobDpDa returns the 1x3 partial derivative of a pseudorange
// w.r.t. the attitude error (small-angle perturbation phi, with
// Cbe' = (I+skew(phi))*Cbe):
// d(range)/d(phi) = e^T * skew(Cbe*lever).
func jacobDpDa(e, Cbe, lever []float64) []float64 {
	cl := matVec3(Cbe, lever)
	sk := skew(cl)
	row := make([]float64, 3)
	for c := 0; c < 3; c++ {
		row[c] = e[0]*sk[c] + e[1]*sk[3+c] + e[2]*sk[6+c]
	}
	return row
}

// jacobDpDl returns the 1x3 partial derivative of a pseudorange
// w.r.t. the body-frame lever arm:
// d(range)/d(lever) = -e^T * Cbe.
func jacobDpDl(e, Cbe []float64) []float64 {
	row := make([]float64, 3)
	for c := 0; c < 3; c++ {
		row[c] = -(e[0]*Cbe[c] + e[1]*Cbe[3+c] + e[2]*Cbe[6+c])
	}
	return row
}

// tcMeas records what EstInsPr needs to re-test a measurement's
// residual at the post-update linearisation point, without redoing
// the ionosphere/troposphere/code-bias lookups a second time.
type tcMeas struct {
	sat      []float64 // satellite ecef position, rs[i*6:i*6+3]
	pr, dts  float64
	ion, trp float64
	dtr      float64
	rvar     float64
}

// Post-update state-magnitude gate thresholds.
const (
	maxAttErr          = 5.0 * D2R       // rad
	maxGyroBiasErr     = 5.0 * D2R       // rad/s
	maxAccelBiasErr    = 1e4 * 9.80665e-3 // m/s^2 (1e4 milli-g)
	postFitSigmaFactor = 4.0
)

// EstInsPr runs one tightly-coupled pseudorange measurement update
// against ins: assemble the per-satellite residual/design row at the
// antenna position (re + Cbe*lever), run the state-subsetted Kalman
// update against a scratch copy of P, then validate the result before
// committing. A P_prior snapshot plus deferred commit is what lets a
// rejected update leave ins bit-identical to its pre-call state.
func EstInsPr(obs []ObsD, nav *Nav, ins *InsState, opt *PrcOpt, rs, dts, vari []float64, svh []int) error {
	if len(obs) == 0 {
		return &SolveError{Kind: NoObservations}
	}
	o := &opt.InsOpt
	nx := ins.Nx
	antp := ins.AntennaPos()
	pos := Ecef2Pos(antp[:])

	Pwork := append([]float64(nil), ins.P...)
	x := make([]float64, nx) // error state, zeroed (closed-loop convention)
	ns := 0
	meas := make([]tcMeas, 0, len(obs))

	for i := range obs {
		sys := SatSys(obs[i].Sat, nil)
		if sys == SYS_NONE || SatExclude(obs[i].Sat, vari[i], svh[i], opt) {
			continue
		}
		if rs[i*6] == 0 && rs[i*6+1] == 0 && rs[i*6+2] == 0 {
			continue
		}
		e := make([]float64, 3)
		r := GeoDist(rs[i*6:i*6+3], antp[:], e)
		if r <= 0 {
			continue
		}
		azel := make([]float64, 2)
		el := SatAzel(pos, e, azel)
		if el < opt.Elmin || !snrMaskPass(&obs[i], azel, opt) {
			continue
		}
		pr, _ := Prange(&obs[i], nav, opt)
		if pr == 0 {
			continue
		}
		ion, _ := nav.IonoCorr(obs[i].Time, pos, azel, opt.IonoOpt)
		if freq := Sat2Freq(obs[i].Sat, obs[i].Code[0], nav); freq > 0 {
			ion *= SQR(FREQ1 / freq)
		}
		trp := 0.0
		if opt.TropOpt != TROPOPT_OFF {
			trp = TropModel(pos, azel, 0.7)
		}

		ci := clkIdx(sys)
		if ci >= o.NRc {
			ci = 0
		}
		dtr := ins.Dtr[ci] * CLIGHT

		// clp subtracts the position, lever-arm and clock error states,
		// so their columns carry the negated range partials; attitude is
		// corrected additively and keeps the jacobDpDa partial as is.
		row := make([]float64, nx)
		for k := 0; k < 3; k++ {
			row[o.IP+k] = e[k]
		}
		da := jacobDpDa(e, ins.Cbe[:], ins.Lever[:])
		dl := jacobDpDl(e, ins.Cbe[:])
		copy(row[o.IA:o.IA+3], da)
		for k := 0; k < 3; k++ {
			row[o.ILa+k] = -dl[k]
		}
		row[o.IRc+ci] = -1.0

		resid := pr - (r + dtr - CLIGHT*dts[i*2] + ion + trp)
		v := resid - rowDot(row, x, nx)

		rvar := VarianceErr(opt, el, sys) + vari[i]
		if !ValIns(v, rvar) {
			continue
		}

		H := row
		R := []float64{rvar}
		if !KalmanUpdate(x, Pwork, nx, H, []float64{v}, R, 1) {
			return &SolveError{Kind: EkfFilterError, Msg: "tightly-coupled update singular"}
		}
		meas = append(meas, tcMeas{sat: append([]float64(nil), rs[i*6:i*6+3]...), pr: pr, dts: dts[i*2], ion: ion, trp: trp, dtr: dtr, rvar: rvar})
		ns++
	}
	if ns == 0 {
		return &SolveError{Kind: LackOfValidSats, Msg: "no tightly-coupled measurements accepted"}
	}

	if !valInsPostFit(meas, antp, x, o) {
		return &SolveError{Kind: EkfFilterError, Msg: "tightly-coupled post-fit validation failed"}
	}

	ins.P = Pwork
	clp(ins, x, o)
	ins.Ns = uint8(ns)
	ins.Time = obs[0].Time
	return nil
}

// valInsPostFit re-tests each accepted measurement's residual at the
// antenna position shifted by -x_p, against the single-dof chi-square
// threshold widened by postFitSigmaFactor (4x), and
// bounds the error-state magnitudes: attitude <=5 deg, gyro bias
// <=5 deg/s, accelerometer bias <=1e4 mg.
func valInsPostFit(meas []tcMeas, antp [3]float64, x []float64, o *InsOpt) bool {
	if Norm(x[o.IA:o.IA+3], 3) > maxAttErr {
		return false
	}
	if Norm(x[o.IBg:o.IBg+3], 3) > maxGyroBiasErr {
		return false
	}
	if Norm(x[o.IBa:o.IBa+3], 3) > maxAccelBiasErr {
		return false
	}

	antp2 := [3]float64{antp[0] - x[o.IP], antp[1] - x[o.IP+1], antp[2] - x[o.IP+2]}
	e := make([]float64, 3)
	thr := postFitSigmaFactor * chiSqrThreshold(1)
	for _, m := range meas {
		r2 := GeoDist(m.sat, antp2[:], e)
		if r2 <= 0 {
			return false
		}
		v2 := m.pr - (r2 + m.dtr - CLIGHT*m.dts + m.ion + m.trp)
		if m.rvar <= 0 || SQR(v2)/m.rvar > thr {
			return false
		}
	}
	return true
}

func rowDot(row, x []float64, n int) float64 {
	var s float64
	for i := 0; i < n; i++ {
		s += row[i] * x[i]
	}
	return s
}

// ValIns applies the normalised-innovation chi-square test (1 dof) to
// a single tightly-coupled measurement: reject innovations whose
// square exceeds the variance by more than the 99.9% single-dof
// threshold.
func ValIns(v, rvar float64) bool {
	if rvar <= 0 {
		return false
	}
	return SQR(v)/rvar <= chiSqrThreshold(1)
}

// clp applies the closed-loop correction of the EKF error state x
// back onto ins: position/velocity/lever/clock states subtract
// directly, accelerometer/gyro biases add directly, attitude corrects
// multiplicatively via
// Cbe <- (I + skew(phi)) * Cbe.
func clp(ins *InsState, x []float64, o *InsOpt) {
	for k := 0; k < 3; k++ {
		ins.Re[k] -= x[o.IP+k]
		ins.Ve[k] -= x[o.IV+k]
		ins.Ba[k] += x[o.IBa+k]
		ins.Bg[k] += x[o.IBg+k]
		ins.Lever[k] -= x[o.ILa+k]
	}
	phi := x[o.IA : o.IA+3]
	dC := addI(skew(phi))
	ins.Cbe = to9(matMul3(dC, ins.Cbe[:]))
	orthonormalize(&ins.Cbe)

	for k := 0; k < o.NRc; k++ {
		ins.Dtr[k] -= x[o.IRc+k] / CLIGHT
	}
}

func addI(m []float64) []float64 {
	out := make([]float64, 9)
	copy(out, m)
	out[0]++
	out[4]++
	out[8]++
	return out
}

func to9(s []float64) [9]float64 {
	var out [9]float64
	copy(out[:], s)
	return out
}

// orthonormalize re-orthogonalises the body-to-ecef rotation via one
// Gram-Schmidt pass, bounding the drift the small-angle attitude
// correction accumulates over many epochs.
func orthonormalize(Cbe *[9]float64) {
	c := Cbe[:]
	x := []float64{c[0], c[3], c[6]}
	y := []float64{c[1], c[4], c[7]}
	xn := Norm(x, 3)
	if xn <= 0 {
		return
	}
	for i := range x {
		x[i] /= xn
	}
	d := Dot(x, y, 3)
	for i := range y {
		y[i] -= d * x[i]
	}
	yn := Norm(y, 3)
	if yn <= 0 {
		return
	}
	for i := range y {
		y[i] /= yn
	}
	z := []float64{
		x[1]*y[2] - x[2]*y[1],
		x[2]*y[0] - x[0]*y[2],
		x[0]*y[1] - x[1]*y[0],
	}
	c[0], c[3], c[6] = x[0], x[1], x[2]
	c[1], c[4], c[7] = y[0], y[1], y[2]
	c[2], c[5], c[8] = z[0], z[1], z[2]
}
