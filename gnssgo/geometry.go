package gnssgo

import "math"

// Ecef2Pos converts ECEF coordinates r (m) to geodetic pos = {lat, lon
// (rad), height (m)} on WGS84
// (Bowring's iterative formula).
func Ecef2Pos(r []float64) []float64 {
	e2 := FE_WGS84 * (2.0 - FE_WGS84)
	r2 := Dot(r, r, 2)
	v := RE_WGS84
	z, zk := r[2], 0.0
	var sinp float64
	for math.Abs(z-zk) >= 1e-4 {
		zk = z
		sinp = z / math.Sqrt(r2+z*z)
		v = RE_WGS84 / math.Sqrt(1.0-e2*sinp*sinp)
		z = r[2] + v*e2*sinp
	}
	pos := make([]float64, 3)
	if r2 > 1e-12 {
		pos[0] = math.Atan(z / math.Sqrt(r2))
	} else if r[2] > 0 {
		pos[0] = PI / 2
	} else {
		pos[0] = -PI / 2
	}
	if r2 > 1e-12 {
		pos[1] = math.Atan2(r[1], r[0])
	}
	pos[2] = math.Sqrt(r2+z*z) - v
	return pos
}

// Pos2Ecef converts geodetic pos = {lat, lon (rad), height (m)} to
// ECEF r (m).
func Pos2Ecef(pos []float64) []float64 {
	sinp, cosp := math.Sincos(pos[0])
	sinl, cosl := math.Sincos(pos[1])
	e2 := FE_WGS84 * (2.0 - FE_WGS84)
	v := RE_WGS84 / math.Sqrt(1.0-e2*sinp*sinp)
	r := make([]float64, 3)
	r[0] = (v + pos[2]) * cosp * cosl
	r[1] = (v + pos[2]) * cosp * sinl
	r[2] = (v*(1.0-e2) + pos[2]) * sinp
	return r
}

// Xyz2Enu returns the 3x3 row-major ECEF-to-local-ENU rotation at
// geodetic pos.
func Xyz2Enu(pos []float64) []float64 {
	sinp, cosp := math.Sincos(pos[0])
	sinl, cosl := math.Sincos(pos[1])
	return []float64{
		-sinl, cosl, 0,
		-sinp * cosl, -sinp * sinl, cosp,
		cosp * cosl, cosp * sinl, sinp,
	}
}

// Ecef2Enu rotates an ECEF vector r into the local ENU frame at pos.
func Ecef2Enu(pos, r []float64) []float64 {
	e := Xyz2Enu(pos)
	out := make([]float64, 3)
	for i := 0; i < 3; i++ {
		out[i] = e[i*3]*r[0] + e[i*3+1]*r[1] + e[i*3+2]*r[2]
	}
	return out
}

// GeoDist computes the geometric range from satellite position rs to
// receiver position rr, applying the Sagnac earth-rotation correction,
// and writes the unit line-of-sight vector into e.
func GeoDist(rs, rr, e []float64) float64 {
	if Norm(rs, 3) < RE_WGS84 {
		return -1
	}
	for i := 0; i < 3; i++ {
		e[i] = rs[i] - rr[i]
	}
	r := Norm(e, 3)
	for i := 0; i < 3; i++ {
		e[i] /= r
	}
	return r + OMGE*(rs[0]*rr[1]-rs[1]*rr[0])/CLIGHT
}

// SatAzel computes satellite azimuth/elevation (rad) at receiver
// geodetic position pos given the ECEF line-of-sight e. Returns the
// elevation.
func SatAzel(pos, e []float64, azel []float64) float64 {
	var az, el float64
	if pos[2] > -RE_WGS84 {
		enu := Ecef2Enu(pos, e)
		if Dot(enu, enu, 2) < 1e-12 {
			az = 0
		} else {
			az = math.Atan2(enu[0], enu[1])
		}
		if az < 0 {
			az += 2 * PI
		}
		el = math.Asin(enu[2])
	} else {
		el = PI / 2
	}
	if azel != nil {
		azel[0], azel[1] = az, el
	}
	return el
}

// Dops computes {GDOP,PDOP,HDOP,VDOP} from the azel table of the ns
// satellites with elevation above elmin.
// Returns the zero value if fewer than 4 satellites qualify.
func Dops(ns int, azel []float64, elmin float64) [4]float64 {
	var dop [4]float64
	H := make([]float64, 0, ns*4)
	n := 0
	for i := 0; i < ns; i++ {
		el := azel[1+i*2]
		if el < elmin || el <= 0 {
			continue
		}
		cosel, sinel := math.Cos(el), math.Sin(el)
		az := azel[i*2]
		sinaz, cosaz := math.Sin(az), math.Cos(az)
		H = append(H, cosel*sinaz, cosel*cosaz, sinel, 1.0)
		n++
	}
	if n < 4 {
		return dop
	}
	_, Q, ok := Lsq(H, make([]float64, n), n, 4)
	if !ok {
		return dop
	}
	dop[0] = math.Sqrt(Q[0] + Q[5] + Q[10] + Q[15]) // GDOP
	dop[1] = math.Sqrt(Q[0] + Q[5] + Q[10])         // PDOP
	dop[2] = math.Sqrt(Q[0] + Q[5])                 // HDOP
	dop[3] = math.Sqrt(Q[10])                        // VDOP
	return dop
}
