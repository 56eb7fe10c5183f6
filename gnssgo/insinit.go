package gnssgo

import "math"

// Initialisation constants: the number of buffered fixes, the minimum
// forward speed a velocity-based coarse alignment needs, the turn-rate
// ceiling above which attitude from velocity is unreliable, the
// dual-antenna pose-variance ceiling, and the largest acceptable gap
// (s) between consecutive buffered fixes.
const (
	initMaxSol     = 5
	initMinVel     = 5.0
	initMaxGyro    = 30.0 * D2R
	initMaxDiff    = 10.0
)

var initMaxVarPose = SQR(5.0 * D2R)

// Initializer runs the INS initialisation state machine: it buffers
// GNSS solutions (and the most recent IMU sample) and promotes
// InsState from INSS_NONE to INSS_SOLVED once a consistent run of
// fixes supports a coarse velocity/attitude alignment.
type Initializer struct {
	opt     *InsOpt
	sols    []Sol
	lastGyr [3]float64
	state   int
}

// NewInitializer returns an Initializer bound to opt, starting in
// INSS_NONE.
func NewInitializer(opt *InsOpt) *Initializer {
	return &Initializer{opt: opt, state: INSS_NONE}
}

// State reports the initialiser's current INSS_??? status.
func (ini *Initializer) State() int { return ini.state }

// AddImu records the latest gyro/accel sample, used by chkSol's
// turn-rate gate.
func (ini *Initializer) AddImu(s ImuSample) {
	ini.lastGyr = s.Gyro
}

// AddSol pushes a GNSS solution into the FIFO buffer, evicting the
// oldest entry once the buffer holds initMaxSol fixes.
func (ini *Initializer) AddSol(sol Sol) {
	ini.sols = append(ini.sols, sol)
	if len(ini.sols) > initMaxSol {
		ini.sols = ini.sols[len(ini.sols)-initMaxSol:]
	}
	if ini.state == INSS_NONE {
		ini.state = INSS_INIT
	}
}

// sol2vel returns the ECEF velocity implied by consecutive solutions
// a and b (b later than a).
func sol2vel(a, b *Sol) ([3]float64, float64) {
	dt := TimeDiff(b.Time, a.Time)
	var v [3]float64
	if dt <= 0 {
		return v, dt
	}
	for i := 0; i < 3; i++ {
		v[i] = (b.Rr[i] - a.Rr[i]) / dt
	}
	return v, dt
}

// chkSol validates the buffered run of solutions is dense enough,
// good enough quality, and fast/stable enough to support a coarse
// velocity-based alignment.
func (ini *Initializer) chkSol() ([3]float64, bool) {
	var zero [3]float64
	if len(ini.sols) < 2 {
		return zero, false
	}
	first := &ini.sols[0]
	if first.Stat == SOLQ_NONE || first.Stat < ini.opt.Iisu {
		return zero, false
	}
	var vsum [3]float64
	n := 0
	for i := 1; i < len(ini.sols); i++ {
		prev, cur := &ini.sols[i-1], &ini.sols[i]
		v, dt := sol2vel(prev, cur)
		if dt <= 0 || dt > initMaxDiff {
			return zero, false
		}
		if cur.Stat == SOLQ_NONE || cur.Stat < ini.opt.Iisu {
			return zero, false
		}
		for k := 0; k < 3; k++ {
			vsum[k] += v[k]
		}
		n++
	}
	var vavg [3]float64
	for k := 0; k < 3; k++ {
		vavg[k] = vsum[k] / float64(n)
	}
	if Norm(vavg[:], 3) < initMinVel {
		return zero, false
	}
	if Norm(ini.lastGyr[:], 3) > initMaxGyro {
		return zero, false
	}
	return vavg, true
}

func eulerToCbn(roll, pitch, yaw float64) []float64 {
	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	sy, cy := math.Sincos(yaw)
	rz := []float64{cy, -sy, 0, sy, cy, 0, 0, 0, 1}
	ry := []float64{cp, 0, sp, 0, 1, 0, -sp, 0, cp}
	rx := []float64{1, 0, 0, 0, cr, -sr, 0, sr, cr}
	return matMul3(matMul3(rz, ry), rx)
}

func transpose3(m []float64) []float64 {
	return []float64{m[0], m[3], m[6], m[1], m[4], m[7], m[2], m[5], m[8]}
}

// TryInit attempts a velocity-based coarse alignment: heading/pitch
// come from the averaged ECEF velocity rotated into the local ENU
// frame (roll assumed zero, no bank-angle observable from velocity
// alone). On success ins is populated and the initialiser (and
// ins.Stat) promote to INSS_SOLVED.
func (ini *Initializer) TryInit(ins *InsState) bool {
	vavg, ok := ini.chkSol()
	if !ok {
		return false
	}
	last := &ini.sols[len(ini.sols)-1]
	pos := Ecef2Pos(last.Rr[:3])
	venu := Ecef2Enu(pos, vavg[:])

	yaw := math.Atan2(venu[0], venu[1])
	horiz := math.Hypot(venu[0], venu[1])
	pitch := math.Atan2(venu[2], horiz)

	Cbn := eulerToCbn(0, -pitch, yaw)
	Cne := transpose3(Xyz2Enu(pos))
	Cbe := matMul3(Cne, Cbn)

	ins.Cbe = to9(Cbe)
	orthonormalize(&ins.Cbe)
	copy(ins.Re[:], last.Rr[:3])
	ins.Ve = vavg
	ins.Dtr = last.Dtr
	ins.Time = last.Time
	ins.Ns = last.Ns
	ins.Gstat = last.Stat
	ins.Stat = INSS_SOLVED
	ini.state = INSS_SOLVED
	return true
}

// TryInitDualAnt performs attitude initialisation from a dual-antenna
// pose fix instead of velocity: Cbe = Cne * Rz(-yaw) * Ry(-pitch) *
// Cvb^T. This path does not require forward motion, unlike TryInit.
func (ini *Initializer) TryInitDualAnt(ins *InsState, pose *PoseMeas, rr []float64) bool {
	if pose.Var[0] > initMaxVarPose || pose.Var[1] > initMaxVarPose || pose.Var[2] > initMaxVarPose {
		return false
	}
	pos := Ecef2Pos(rr)
	roll, pitch, yaw := pose.Rpy[0], pose.Rpy[1], pose.Rpy[2]

	rz := []float64{math.Cos(-yaw), -math.Sin(-yaw), 0, math.Sin(-yaw), math.Cos(-yaw), 0, 0, 0, 1}
	ry := []float64{math.Cos(-pitch), 0, math.Sin(-pitch), 0, 1, 0, -math.Sin(-pitch), 0, math.Cos(-pitch)}
	_ = roll // roll is carried by Cvb's own calibration, not re-applied here

	Cne := transpose3(Xyz2Enu(pos))
	CvbT := transpose3(ins.Cvb[:])
	Cbe := matMul3(matMul3(matMul3(Cne, rz), ry), CvbT)

	ins.Cbe = to9(Cbe)
	orthonormalize(&ins.Cbe)
	copy(ins.Re[:], rr[:3])
	ins.Time = pose.Time
	ins.Stat = INSS_SOLVED
	ini.state = INSS_SOLVED
	return true
}
