package gnssgo

import "math"

// TimeAdd returns t shifted by sec seconds (fractional carry kept in
// Sec, whole seconds folded into Time).
func TimeAdd(t Gtime, sec float64) Gtime {
	tt := t.Sec + sec
	d := math.Floor(tt)
	t.Time += uint64(int64(d))
	t.Sec = tt - d
	return t
}

// TimeDiff returns t1-t2 in seconds.
func TimeDiff(t1, t2 Gtime) float64 {
	return float64(int64(t1.Time)-int64(t2.Time)) + (t1.Sec - t2.Sec)
}
