package gnssgo

import "math"

// IonModel evaluates the Klobuchar broadcast ionosphere model at time
// t, ionosphere coefficients ion[8], receiver geodetic pos and
// satellite azel, returning the L1 slant delay (m).
func IonModel(t Gtime, ion [8]float64, pos, azel []float64) float64 {
	if pos[2] < -1e3 || azel[1] <= 0 {
		return 0
	}
	if Norm(ion[:], 8) <= 0 {
		ion = [8]float64{
			0.1118e-07, -0.7451e-08, -0.5961e-07, 0.1192e-06,
			0.1167e+06, -0.2294e+06, -0.1311e+06, 0.1049e+07,
		}
	}
	lat, lon := pos[0]/PI, pos[1]/PI
	az, el := azel[0], azel[1]/PI

	psi := 0.0137/(el+0.11) - 0.022
	phi := lat + psi*math.Cos(az)
	if phi > 0.416 {
		phi = 0.416
	} else if phi < -0.416 {
		phi = -0.416
	}
	lam := lon + psi*math.Sin(az)/math.Cos(phi*PI)
	phi += 0.064 * math.Cos((lam-1.617)*PI)

	tt := 43200.0*lam + t.Time2Tow()
	tt -= math.Floor(tt/86400.0) * 86400.0

	f := 1.0 + 16.0*math.Pow(0.53-el, 3)

	amp := ion[0] + phi*(ion[1]+phi*(ion[2]+phi*ion[3]))
	per := ion[4] + phi*(ion[5]+phi*(ion[6]+phi*ion[7]))
	if amp < 0 {
		amp = 0
	}
	if per < 72000.0 {
		per = 72000.0
	}
	x := 2.0 * PI * (tt - 50400.0) / per

	var delay float64
	if math.Abs(x) < 1.57 {
		delay = 5e-9 + amp*(1.0+x*x*(-0.5+x*x/24.0))
	} else {
		delay = 5e-9
	}
	return CLIGHT * f * delay
}

// Time2Tow returns seconds-of-day for a Gtime, a narrow helper kept
// local to the Klobuchar evaluator.
func (t Gtime) Time2Tow() float64 {
	return float64(t.Time%86400) + t.Sec
}

// IonMapf returns the ionospheric mapping function at the given
// elevation.
func IonMapf(pos, azel []float64) float64 {
	if pos[2] >= 1e4 {
		return 1.0
	}
	return 1.0 / math.Cos(math.Asin((RE_WGS84+pos[2])/(RE_WGS84+350000.0)*math.Sin(PI/2-azel[1])))
}

// TropModel evaluates the Saastamoinen tropospheric delay model at
// receiver pos and satellite elevation, with relative humidity humi,
// returning the slant delay (m)
func TropModel(pos, azel []float64, humi float64) float64 {
	if pos[2] < -100.0 || pos[2] > 1e4 || azel[1] <= 0 {
		return 0
	}
	hgt := pos[2]
	if hgt < 0 {
		hgt = 0
	}
	pres := 1013.25 * math.Pow(1.0-2.2557e-5*hgt, 5.2568)
	temp := 15.0 - 6.5e-3*hgt + 273.16
	e := 6.108 * humi * math.Exp((17.15*temp-4684.0)/(temp-38.45))

	z := PI/2.0 - azel[1]
	trph := 0.0022768 * pres / (1.0 - 0.00266*math.Cos(2.0*pos[0]) - 0.00028*hgt/1e3) / math.Cos(z)
	trpw := 0.002277 * (1255.0/temp + 0.05) * e / math.Cos(z)
	return trph + trpw
}

// IonoCorr dispatches to the configured ionosphere model, returning
// the L1 slant delay (m) and its variance. The SBAS/QZSS branches
// fall back to the Klobuchar broadcast model; a full IONEX-grid
// bilinear interpolation is wired when nav carries a Tec table.
func (nav *Nav) IonoCorr(t Gtime, pos, azel []float64, ionoopt int) (ion, vari float64) {
	switch ionoopt {
	case IONOOPT_OFF:
		return 0, SQR(ERR_ION)
	case IONOOPT_BRDC:
		ion = IonModel(t, nav.IonGPS, pos, azel)
		return ion, SQR(ion * ERR_BRDCI)
	case IONOOPT_QZS:
		ion = IonModel(t, nav.IonQZS, pos, azel)
		return ion, SQR(ion * ERR_BRDCI)
	case IONOOPT_TEC:
		if d, v, ok := nav.interpTec(t, pos, azel); ok {
			return d, v
		}
		ion = IonModel(t, nav.IonGPS, pos, azel)
		return ion, SQR(ion * ERR_BRDCI)
	case IONOOPT_SBAS:
		// SBAS grid corrections require a decoded MT18/26 message
		// stream, out of scope for this core; fall back to broadcast.
		ion = IonModel(t, nav.IonGPS, pos, azel)
		return ion, SQR(ion * ERR_BRDCI)
	case IONOOPT_IFLC:
		return 0, 0 // handled by the iono-free combination in pseudorange.go
	}
	return 0, 0
}

// interpTec bilinearly interpolates the nearest-in-time IONEX TEC map
// in nav.Tec at the ionosphere pierce point (the mapping function is
// IonMapf above, the pierce-point projection IonPPP below).
func (nav *Nav) interpTec(t Gtime, pos, azel []float64) (delay, vari float64, ok bool) {
	if len(nav.Tec) == 0 {
		return 0, 0, false
	}
	best := &nav.Tec[0]
	bestdt := math.Abs(TimeDiff(t, best.Time))
	for i := 1; i < len(nav.Tec); i++ {
		dt := math.Abs(TimeDiff(t, nav.Tec[i].Time))
		if dt < bestdt {
			bestdt = dt
			best = &nav.Tec[i]
		}
	}
	if best.Lats[2] == 0 || best.Lons[2] == 0 || len(best.Data) == 0 {
		return 0, 0, false
	}
	pp := IonPPP(pos, azel, RE_WGS84, best.Hgts[0]*1e3)
	lat, lon := pp[0]*R2D, pp[1]*R2D

	a := (lat - best.Lats[0]) / best.Lats[2]
	b := (lon - best.Lons[0]) / best.Lons[2]
	i0, j0 := int(math.Floor(a)), int(math.Floor(b))
	if a < 0 || b < 0 || i0+1 >= best.Ndata[0] || j0+1 >= best.Ndata[1] ||
		(i0+1)*best.Ndata[1]+j0+1 >= len(best.Data) {
		return 0, 0, false
	}
	fa, fb := a-float64(i0), b-float64(j0)
	at := func(i, j int) float64 { return best.Data[i*best.Ndata[1]+j] }
	tecu := (1-fa)*(1-fb)*at(i0, j0) + fa*(1-fb)*at(i0+1, j0) +
		(1-fa)*fb*at(i0, j0+1) + fa*fb*at(i0+1, j0+1)
	f := IonMapf(pos, azel)
	delay = 40.3e16 / SQR(FREQ1) * tecu * f // 40.3e16/f^2: TECU -> metres
	vari = SQR(delay * 0.3)
	return delay, vari, true
}

// IonPPP projects the receiver position and satellite azel onto the
// ionosphere pierce point at shell height hion above earth radius re,
// returning geodetic {lat,lon} (rad)
func IonPPP(pos, azel []float64, re, hion float64) []float64 {
	rp := re / (re + hion) * math.Cos(azel[1])
	ap := PI/2.0 - azel[1] - math.Asin(rp)
	sinap, cosap := math.Sin(ap), math.Cos(ap)
	posp := make([]float64, 2)
	posp[0] = math.Asin(math.Sin(pos[0])*math.Cos(ap) + math.Cos(pos[0])*sinap*math.Cos(azel[0]))
	if (pos[0] > 70.0*D2R && math.Tan(ap)*math.Cos(azel[0]) > math.Tan(PI/2.0-pos[0])) ||
		(pos[0] < -70.0*D2R && math.Tan(ap)*math.Cos(azel[0]+PI) > math.Tan(PI/2.0+pos[0])) {
		posp[1] = pos[1] + PI - math.Asin(sinap*math.Sin(azel[0])/math.Cos(posp[0]))
	} else {
		posp[1] = pos[1] + math.Asin(sinap*math.Sin(azel[0])/math.Cos(posp[0]))
	}
	return posp
}

// Atmosphere error-model coefficients, pulled out as named constants.
// IonoCorr uses ERR_ION and ERR_BRDCI; ERR_SAAS is not referenced by
// the code in this package.
const (
	ERR_ION   = 5.0  // nominal ionosphere variance floor (m)
	ERR_BRDCI = 0.5  // fraction of the broadcast delay kept as residual sigma
	ERR_SAAS  = 0.3  // relative error factor of the Saastamoinen troposphere model
)
