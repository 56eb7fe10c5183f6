package gnssgo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Lsq solves the weighted normal equations x = (HᵀH)⁻¹Hᵀy and returns
// the cofactor matrix Q = (HᵀH)⁻¹, backed by gonum/mat for the
// underlying inversion.
//
// H is laid out row-major, n rows (observations) by m columns
// (states). Returns false if HᵀH is singular.
func Lsq(H []float64, y []float64, n, m int) (x []float64, Q []float64, ok bool) {
	Hm := mat.NewDense(n, m, H)
	ym := mat.NewVecDense(n, y)

	var Ht mat.Dense
	Ht.CloneFrom(Hm.T())

	var HtH mat.Dense
	HtH.Mul(&Ht, Hm)

	var HtHInv mat.Dense
	if err := HtHInv.Inverse(&HtH); err != nil {
		return nil, nil, false
	}

	var Hty mat.VecDense
	Hty.MulVec(&Ht, ym)

	var xv mat.VecDense
	xv.MulVec(&HtHInv, &Hty)

	x = make([]float64, m)
	for i := 0; i < m; i++ {
		x[i] = xv.AtVec(i)
	}
	Q = make([]float64, m*m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			Q[i*m+j] = HtHInv.At(i, j)
		}
	}
	return x, Q, true
}

// KalmanUpdate runs a single measurement update x' = x + K*v,
// P' = P - K*H*P with K = P*Hᵀ*(H*P*Hᵀ+R)⁻¹, restricted to the subset
// of states for which x[i]!=0 || P[i*n+i]>0 — this lets a single
// implementation cover both the 4-state GNSS clock vector and the
// full tightly-coupled state without a dimension parameter. x and P
// are updated in place; returns false if the innovation covariance is
// singular.
func KalmanUpdate(x []float64, P []float64, n int, H []float64, v []float64, R []float64, m int) bool {
	ix := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if x[i] != 0 || P[i*n+i] > 0 {
			ix = append(ix, i)
		}
	}
	k := len(ix)
	if k == 0 {
		return true
	}

	// Sub-select H columns and P rows/cols onto the active index set.
	Hs := mat.NewDense(m, k, nil)
	for r := 0; r < m; r++ {
		for c, idx := range ix {
			Hs.Set(r, c, H[r*n+idx])
		}
	}
	Ps := mat.NewDense(k, k, nil)
	for r, ri := range ix {
		for c, ci := range ix {
			Ps.Set(r, c, P[ri*n+ci])
		}
	}
	Rm := mat.NewDense(m, m, R)

	var Hst mat.Dense
	Hst.CloneFrom(Hs.T())

	var PHt mat.Dense
	PHt.Mul(Ps, &Hst)

	var HPHt mat.Dense
	HPHt.Mul(Hs, &PHt)

	var S mat.Dense
	S.Add(&HPHt, Rm)

	var Sinv mat.Dense
	if err := Sinv.Inverse(&S); err != nil {
		return false
	}

	var K mat.Dense
	K.Mul(&PHt, &Sinv)

	vv := mat.NewVecDense(m, v)
	var dxs mat.VecDense
	dxs.MulVec(&K, vv)

	for c, idx := range ix {
		x[idx] += dxs.AtVec(c)
	}

	var KH mat.Dense
	KH.Mul(&K, Hs)

	var KHP mat.Dense
	KHP.Mul(&KH, Ps)

	for r, ri := range ix {
		for c, ci := range ix {
			P[ri*n+ci] = Ps.At(r, c) - KHP.At(r, c)
		}
	}
	return true
}

// Dot is a small inner-product helper, kept as a free function since
// residual/variance code throughout this package uses it on small
// fixed-size slices where allocating a gonum vector would be
// wasteful.
func Dot(a, b []float64, n int) float64 {
	var s float64
	for i := 0; i < n; i++ {
		s += a[i] * b[i]
	}
	return s
}

// Norm is a small Euclidean-norm helper.
func Norm(a []float64, n int) float64 {
	return math.Sqrt(Dot(a, a, n))
}
