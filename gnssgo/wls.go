package gnssgo

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxIter  = 10
	convThr  = 1e-4
)

// chiSqrThreshold returns the upper 99.9% quantile of the chi-square
// distribution with dof degrees of freedom, computed via gonum's
// distuv rather than a fixed-size lookup table so it generalises to
// any degrees-of-freedom count a residual set produces.
func chiSqrThreshold(dof int) float64 {
	if dof <= 0 {
		return 0
	}
	d := distuv.ChiSquared{K: float64(dof)}
	return d.Quantile(0.999)
}

// EstimatePos runs the iterated weighted least squares single-point
// solve: repeatedly linearise Residuals about the current estimate,
// solve the normal equations, and stop on convergence, divergence, or
// exhausting maxIter. opt.InsOpt is not consulted here; this is the
// GNSS-only path feeding Sol / the tightly-coupled initialiser.
func EstimatePos(obs []ObsD, nav *Nav, opt *PrcOpt, rs, dts, vari []float64, svh []int) (sol *Sol, azel []float64, vsat []int, resp []float64, err error) {
	if len(obs) == 0 {
		return nil, nil, nil, nil, &SolveError{Kind: NoObservations}
	}

	x := make([]float64, gnssNX)
	// Seed from the centroid of visible satellites scaled toward the
	// earth's surface; a zero start would put the receiver at the
	// earth's centre where GeoDist/Ecef2Pos are singular.
	var cx, cy, cz float64
	n := 0
	for i := range rs {
		if i%6 == 0 && (rs[i] != 0 || rs[i+1] != 0 || rs[i+2] != 0) {
			cx += rs[i]
			cy += rs[i+1]
			cz += rs[i+2]
			n++
		}
	}
	if n > 0 {
		norm := Norm([]float64{cx / float64(n), cy / float64(n), cz / float64(n)}, 3)
		if norm > 0 {
			scale := RE_WGS84 / norm
			x[0], x[1], x[2] = cx/float64(n)*scale, cy/float64(n)*scale, cz/float64(n)*scale
		}
	}

	var v, H, R, resV []float64
	var vsatOut []int
	var ns int
	for iter := 0; iter < maxIter; iter++ {
		v, H, R, azel, vsatOut, resV, ns = Residuals(obs, nav, x, opt, rs, dts, vari, svh)
		nv := len(v)
		if nv < gnssNX {
			return nil, azel, vsatOut, resV, &SolveError{Kind: LackOfValidSats, Msg: "insufficient valid satellites"}
		}
		weightRows(H, v, R, nv, gnssNX)

		dx, Q, ok := Lsq(H, v, nv, gnssNX)
		if !ok {
			return nil, azel, vsatOut, resV, &SolveError{Kind: LsqError, Msg: "singular normal equations"}
		}
		for i := range x {
			x[i] += dx[i]
		}
		if Norm(dx, len(dx)) < convThr {
			sol, verr := buildSol(obs, x, v, ns, nv, opt, azel, vsatOut, Q)
			return sol, azel, vsatOut, resV, verr
		}
	}
	return nil, azel, vsatOut, resV, &SolveError{Kind: IterationDivergent, Msg: "wls did not converge"}
}

// buildSol packages the converged state into a Sol and runs ValSol
// (GDOP + post-fit chi-square gates). ns is the count of real
// satellite rows, nv the total row count including anchoring rows.
func buildSol(obs []ObsD, x, v []float64, ns, nv int, opt *PrcOpt, azel []float64, vsat []int, Q []float64) (*Sol, error) {
	if err := ValSol(azel, vsat, nv, opt, v, nv-gnssNX); err != nil {
		return nil, err
	}
	sol := &Sol{Stat: SOLQ_SINGLE, Ns: uint8(ns)}
	copy(sol.Rr[:3], x[:3])
	for i := 0; i < 4; i++ {
		sol.Dtr[i] = x[3+i] / CLIGHT
	}
	sol.Qr = [6]float64{
		Q[0*gnssNX+0], Q[1*gnssNX+1], Q[2*gnssNX+2],
		Q[0*gnssNX+1], Q[1*gnssNX+2], Q[2*gnssNX+0],
	}
	if len(obs) > 0 {
		sol.Time = TimeAdd(obs[0].Time, -x[3]/CLIGHT)
	}
	return sol, nil
}

// ValSol validates a converged solution against the post-fit
// chi-square test and the GDOP ceiling.
// nv is the residual count, dof the redundancy (nv-gnssNX).
func ValSol(azel []float64, vsat []int, nv int, opt *PrcOpt, v []float64, dof int) error {
	if dof > 0 {
		var vv float64
		for i := 0; i < len(v); i++ {
			vv += v[i] * v[i]
		}
		thr := chiSqrThreshold(dof)
		if vv > thr {
			return &SolveError{Kind: ChiSquareReject, Msg: "post-fit residual chi-square test failed"}
		}
	}
	dop := Dops(len(vsat), azel, opt.Elmin)
	if opt.MaxGdop > 0 && (dop[0] <= 0 || dop[0] > opt.MaxGdop) {
		return &SolveError{Kind: GdopReject, Msg: "gdop exceeds ceiling"}
	}
	return nil
}

// weightRows scales each (H,v) row by the inverse standard deviation
// 1/sqrt(R[i]), turning the weighted least squares problem into an
// ordinary one before handing it to Lsq: the weight matrix is folded
// into the design matrix rather than carried through the normal
// equations explicitly.
func weightRows(H, v, R []float64, n, m int) {
	for i := 0; i < n; i++ {
		if R[i] <= 0 {
			continue
		}
		w := 1.0 / math.Sqrt(R[i])
		v[i] *= w
		for j := 0; j < m; j++ {
			H[i*m+j] *= w
		}
	}
}
