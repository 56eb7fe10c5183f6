package gnssgo

// ResidualDop assembles the Doppler-derived velocity residual vector
// and design matrix at the current receiver position/velocity/clock-
// drift estimate x (3 position + 3 velocity + 1 clock-drift).
func ResidualDop(obs []ObsD, nav *Nav, rs, dts []float64, x []float64, azel []float64, vsat []int) (v, H []float64, ns int) {
	n := len(obs)
	v = make([]float64, 0, n)
	H = make([]float64, 0, n*4)

	for i := 0; i < n; i++ {
		if vsat[i] == 0 || obs[i].D[0] == 0 {
			continue
		}
		e := make([]float64, 3)
		r := GeoDist(rs[i*6:i*6+3], x[:3], e)
		if r <= 0 {
			continue
		}
		// Satellite velocity projected onto the line of sight, minus
		// the receiver's candidate velocity and clock drift.
		rate := Dot(rs[i*6+3:i*6+6], e, 3) - Dot(x[3:6], e, 3)
		rate += OMGE / CLIGHT * (rs[i*6+4]*x[0] + rs[i*6+1]*x[3] - rs[i*6+3]*x[1] - rs[i*6]*x[4])

		freq := Sat2Freq(obs[i].Sat, obs[i].Code[0], nav)
		if freq == 0 {
			continue
		}
		lam := CLIGHT / freq
		dop := -obs[i].D[0] * lam

		resid := dop - (rate + x[6] - CLIGHT*dts[i*2+1])

		row := make([]float64, 4)
		row[0], row[1], row[2] = -e[0], -e[1], -e[2]
		row[3] = 1.0
		v = append(v, resid)
		H = append(H, row...)
		ns++
	}
	return v, H, ns
}

// EstVel solves the single-epoch velocity/clock-drift least squares
// problem given an already-converged position estimate. Returns the
// ECEF velocity and clock drift.
func EstVel(obs []ObsD, nav *Nav, rs, dts []float64, rr []float64, azel []float64, vsat []int) (vel [3]float64, drift float64, err error) {
	x := make([]float64, 7)
	copy(x[:3], rr[:3])

	for iter := 0; iter < maxIter; iter++ {
		v, H, ns := ResidualDop(obs, nav, rs, dts, x, azel, vsat)
		if ns < 4 {
			return vel, 0, &SolveError{Kind: LackOfValidSats, Msg: "insufficient doppler observations"}
		}
		dx, _, ok := Lsq(H, v, ns, 4)
		if !ok {
			return vel, 0, &SolveError{Kind: LsqError, Msg: "singular velocity normal equations"}
		}
		for i := 0; i < 4; i++ {
			x[3+i] += dx[i]
		}
		if Norm(dx, 4) < convThr {
			copy(vel[:], x[3:6])
			return vel, x[6] / CLIGHT, nil
		}
	}
	return vel, 0, &SolveError{Kind: IterationDivergent, Msg: "velocity solve did not converge"}
}
