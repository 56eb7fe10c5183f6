package gnssgo

import "math"

// RaimFde runs receiver-autonomous integrity monitoring with fault
// detection and exclusion: when the initial solve fails validation,
// retry the solve once per satellite with that satellite removed and
// keep the best passing result. Returns the original error if no
// single-satellite exclusion restores a valid solution.
func RaimFde(obs []ObsD, nav *Nav, opt *PrcOpt, rs, dts, vari []float64, svh []int, firstErr error) (*Sol, []float64, []int, []float64, error) {
	if !opt.RaimFde || len(obs) < 6 {
		return nil, nil, nil, nil, firstErr
	}

	var best *Sol
	var bestAzel []float64
	var bestVsat []int
	var bestResp []float64
	bestGdop := math.MaxFloat64

	for excl := 0; excl < len(obs); excl++ {
		trial := make([]ObsD, 0, len(obs)-1)
		trs := make([]float64, 0, (len(obs)-1)*6)
		tdts := make([]float64, 0, (len(obs)-1)*2)
		tvari := make([]float64, 0, len(obs)-1)
		tsvh := make([]int, 0, len(obs)-1)
		for i := range obs {
			if i == excl {
				continue
			}
			trial = append(trial, obs[i])
			trs = append(trs, rs[i*6:i*6+6]...)
			tdts = append(tdts, dts[i*2:i*2+2]...)
			tvari = append(tvari, vari[i])
			tsvh = append(tsvh, svh[i])
		}

		sol, azel, vsat, resp, err := EstimatePos(trial, nav, opt, trs, tdts, tvari, tsvh)
		if err != nil {
			continue
		}
		dop := Dops(len(vsat), azel, opt.Elmin)
		if dop[0] > 0 && dop[0] < bestGdop {
			bestGdop = dop[0]
			best = sol
			bestAzel = azel
			bestVsat = vsat
			bestResp = resp
		}
	}

	if best == nil {
		return nil, nil, nil, nil, firstErr
	}
	return best, bestAzel, bestVsat, bestResp, nil
}
