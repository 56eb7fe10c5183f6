// Package metrics exposes Prometheus gauges for the epoch server: one
// registry, MustRegister at construction, Set per processed epoch.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the per-epoch solution-quality and EKF-state gauges
// the server loop updates as it processes epochs. Gdop and
// SolutionQual are set on GNSS-only (pre-initialisation) epochs,
// PosCovTrace on tightly-coupled ones; PostfitChi2 is registered but
// the server loop does not set it.
type Collector struct {
	SatsTracked  prometheus.Gauge
	SatsUsed     prometheus.Gauge
	SolutionQual prometheus.Gauge
	Gdop         prometheus.Gauge
	PostfitChi2  prometheus.Gauge
	PosCovTrace  prometheus.Gauge
	InsStatus    prometheus.Gauge
	EpochsTotal  prometheus.Counter
	RejectsTotal *prometheus.CounterVec
}

// NewCollector builds and registers the gauge/counter set against reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		SatsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcinsd", Name: "satellites_tracked", Help: "Satellites present in the current epoch's observation set.",
		}),
		SatsUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcinsd", Name: "satellites_used", Help: "Satellites retained after exclusion/RAIM in the current epoch.",
		}),
		SolutionQual: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcinsd", Name: "solution_quality", Help: "Current solution status code (SOLQ_???).",
		}),
		Gdop: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcinsd", Name: "gdop", Help: "Geometric dilution of precision of the current epoch.",
		}),
		PostfitChi2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcinsd", Name: "postfit_chi_square", Help: "Post-fit weighted residual sum of squares.",
		}),
		PosCovTrace: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcinsd", Name: "position_covariance_trace", Help: "Trace of the EKF position-block covariance (m^2).",
		}),
		InsStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tcinsd", Name: "ins_status", Help: "Current INS initialisation status code (INSS_???).",
		}),
		EpochsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tcinsd", Name: "epochs_total", Help: "Epochs processed by the server loop.",
		}),
		RejectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tcinsd", Name: "rejects_total", Help: "Epochs rejected, by SolveError kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(c.SatsTracked, c.SatsUsed, c.SolutionQual, c.Gdop,
		c.PostfitChi2, c.PosCovTrace, c.InsStatus, c.EpochsTotal, c.RejectsTotal)
	return c
}
