// Package server implements the single-writer epoch loop: one
// goroutine owns the gnssgo.InsState, consuming already-decoded epochs
// from a channel so this package never itself parses RINEX/RTCM (that
// decoding is an out-of-scope external collaborator). Logging uses
// structured logrus fields; epoch/session identifiers use google/uuid.
package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skywave-nav/tcgnssins/gnssgo"
	"github.com/skywave-nav/tcgnssins/internal/metrics"
)

// EpochInput is one already-decoded epoch: the observation set (and
// the Nav snapshot it should be resolved against), plus whatever
// ambient IMU sample or dual-antenna pose fix arrived since the last
// epoch. Producer goroutines (stream decoders) feed these in; the
// server never decodes a stream itself.
type EpochInput struct {
	Obs  []gnssgo.ObsD
	Nav  *gnssgo.Nav
	Imu  *gnssgo.ImuSample
	Pose *gnssgo.PoseMeas
}

// Server wires components A-I into the §5 concurrency model: it owns
// ins and the initialiser exclusively, processing epochs one at a time
// off the input channel.
type Server struct {
	opt       gnssgo.PrcOpt
	satpos    gnssgo.SatPosProvider
	ins       *gnssgo.InsState
	init      *gnssgo.Initializer
	metrics   *metrics.Collector
	log       *logrus.Logger
	sessionID uuid.UUID
}

// New builds a Server. opt must already carry the InsOpt layout the
// tightly-coupled state vector uses (config.ToPrcOpt does this).
func New(opt gnssgo.PrcOpt, satpos gnssgo.SatPosProvider, mc *metrics.Collector, log *logrus.Logger) *Server {
	insOpt := opt.InsOpt
	return &Server{
		opt:       opt,
		satpos:    satpos,
		ins:       gnssgo.NewInsState(&insOpt),
		init:      gnssgo.NewInitializer(&insOpt),
		metrics:   mc,
		log:       log,
		sessionID: uuid.New(),
	}
}

// Run drains in until ctx is cancelled, processing one epoch at a
// time. Shutdown is checked only at epoch boundaries: an in-progress
// solve always runs to completion.
func (s *Server) Run(ctx context.Context, in <-chan EpochInput) error {
	logger := s.log.WithField("session", s.sessionID.String())
	logger.Info("epoch server starting")
	for {
		select {
		case <-ctx.Done():
			logger.Info("epoch server stopping: context cancelled")
			return ctx.Err()
		case epoch, open := <-in:
			if !open {
				logger.Info("epoch server stopping: input channel closed")
				return nil
			}
			s.processEpoch(logger, epoch)
		}
	}
}

func (s *Server) processEpoch(logger *logrus.Entry, epoch EpochInput) {
	if s.metrics != nil {
		s.metrics.EpochsTotal.Inc()
	}
	if epoch.Imu != nil {
		s.init.AddImu(*epoch.Imu)
	}
	if len(epoch.Obs) == 0 {
		return
	}
	if s.metrics != nil {
		s.metrics.SatsTracked.Set(float64(len(epoch.Obs)))
	}

	rs, dts, vari, svh := s.satpos(epoch.Obs[0].Time, epoch.Obs, epoch.Nav, s.opt.SatEph)

	if s.ins.Stat != gnssgo.INSS_SOLVED {
		s.bootstrapEpoch(logger, epoch, rs, dts, vari, svh)
		return
	}
	s.trackEpoch(logger, epoch, rs, dts, vari, svh)
}

// bootstrapEpoch runs the GNSS-only single-point solve and feeds its
// result to the initialiser, which needs a stream of GNSS-only fixes
// before the tightly-coupled EKF can start.
func (s *Server) bootstrapEpoch(logger *logrus.Entry, epoch EpochInput, rs, dts, vari []float64, svh []int) {
	sol, azel, vsat, resp, err := gnssgo.EstimatePos(epoch.Obs, epoch.Nav, &s.opt, rs, dts, vari, svh)
	if err != nil {
		if s.opt.RaimFde {
			sol, azel, vsat, resp, err = gnssgo.RaimFde(epoch.Obs, epoch.Nav, &s.opt, rs, dts, vari, svh, err)
		}
		if err != nil {
			s.reject(logger, err)
			return
		}
	}
	_, _ = azel, vsat
	_ = resp

	s.init.AddSol(*sol)
	if epoch.Pose != nil {
		if s.init.TryInitDualAnt(s.ins, epoch.Pose, sol.Rr[:3]) {
			logger.WithField("mode", "dual-antenna").Info("ins initialised")
			return
		}
	}
	if s.init.TryInit(s.ins) {
		logger.WithField("mode", "velocity").Info("ins initialised")
	}
	if s.metrics != nil {
		s.metrics.SolutionQual.Set(float64(sol.Stat))
		s.metrics.SatsUsed.Set(float64(sol.Ns))
		s.metrics.Gdop.Set(gnssgo.Dops(len(vsat), azel, s.opt.Elmin)[0])
		s.metrics.InsStatus.Set(float64(s.ins.Stat))
	}
}

// trackEpoch runs the tightly-coupled pseudorange EKF update against
// the already-initialised inertial state.
func (s *Server) trackEpoch(logger *logrus.Entry, epoch EpochInput, rs, dts, vari []float64, svh []int) {
	if err := gnssgo.EstInsPr(epoch.Obs, epoch.Nav, s.ins, &s.opt, rs, dts, vari, svh); err != nil {
		s.reject(logger, err)
		return
	}
	if s.metrics != nil {
		s.metrics.SatsUsed.Set(float64(s.ins.Ns))
		s.metrics.InsStatus.Set(float64(s.ins.Stat))
		s.metrics.PosCovTrace.Set(s.ins.P[0] + s.ins.P[s.ins.Nx+1] + s.ins.P[2*s.ins.Nx+2])
	}
}

func (s *Server) reject(logger *logrus.Entry, err error) {
	kind := "unknown"
	if se, ok := err.(*gnssgo.SolveError); ok {
		kind = se.Kind.String()
	}
	logger.WithField("reason", kind).Warn("epoch rejected")
	if s.metrics != nil {
		s.metrics.RejectsTotal.WithLabelValues(kind).Inc()
	}
}
