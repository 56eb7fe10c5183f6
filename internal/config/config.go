// Package config loads and validates the YAML processing configuration
// for tcinsd: a struct-tag validated YAML document covering the
// processing, INS tuning, and server settings an operator tunes.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/skywave-nav/tcgnssins/gnssgo"
)

// Processing holds the YAML-facing subset of gnssgo.PrcOpt: fields a
// deployment actually tunes, kept separate from the solver's full
// PrcOpt so config.Config stays serialisable and independently
// validatable.
type Processing struct {
	ElevationMaskDeg float64 `yaml:"elevation_mask_deg" validate:"gte=0,lte=90"`
	MaxGdop          float64 `yaml:"max_gdop" validate:"gt=0"`
	IonoOpt          string  `yaml:"iono_opt" validate:"oneof=off brdc sbas iflc tec qzs"`
	TropoOpt         string  `yaml:"tropo_opt" validate:"oneof=off saas sbas est estg"`
	RaimFde          bool    `yaml:"raim_fde"`
	PseudorangeSigma float64 `yaml:"pseudorange_sigma_m" validate:"gt=0"`
	DopplerSigma     float64 `yaml:"doppler_sigma_hz" validate:"gt=0"`
}

// InsTuning holds the YAML-facing subset of gnssgo.InsOpt.
type InsTuning struct {
	TightCoupling string `yaml:"tight_coupling" validate:"oneof=single_diff ppp"`
	WorstInitQuality string `yaml:"worst_init_quality" validate:"oneof=single float dgps sbas fix"`
}

// Server holds the epoch-server/ambient settings: log level and the
// metrics HTTP listener address.
type Server struct {
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`
	MetricsListen string `yaml:"metrics_listen" validate:"required"`
	InputBuffer   int    `yaml:"input_buffer" validate:"gte=1"`
}

// Config is the top-level YAML document tcinsd reads.
type Config struct {
	Processing Processing `yaml:"processing" validate:"required"`
	Ins        InsTuning  `yaml:"ins" validate:"required"`
	Server     Server     `yaml:"server" validate:"required"`
}

// Default returns a Config matching gnssgo's conservative built-in
// defaults (gnssgo.DefaultPrcOpt/DefaultInsOpt), except that
// PseudorangeSigma is 0.3 m where DefaultPrcOpt sets Err[1] to 100.
func Default() *Config {
	return &Config{
		Processing: Processing{
			ElevationMaskDeg: 15.0,
			MaxGdop:          30.0,
			IonoOpt:          "brdc",
			TropoOpt:         "saas",
			RaimFde:          true,
			PseudorangeSigma: 0.3,
			DopplerSigma:     1.0,
		},
		Ins: InsTuning{
			TightCoupling:    "single_diff",
			WorstInitQuality: "single",
		},
		Server: Server{
			LogLevel:      "info",
			MetricsListen: ":9469",
			InputBuffer:   64,
		},
	}
}

var validate = validator.New()

// Load reads and validates the YAML config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return cfg, nil
}

var ionoOptCodes = map[string]int{
	"off": gnssgo.IONOOPT_OFF, "brdc": gnssgo.IONOOPT_BRDC, "sbas": gnssgo.IONOOPT_SBAS,
	"iflc": gnssgo.IONOOPT_IFLC, "tec": gnssgo.IONOOPT_TEC, "qzs": gnssgo.IONOOPT_QZS,
}

var tropoOptCodes = map[string]int{
	"off": gnssgo.TROPOPT_OFF, "saas": gnssgo.TROPOPT_SAAS, "sbas": gnssgo.TROPOPT_SBAS,
	"est": gnssgo.TROPOPT_EST, "estg": gnssgo.TROPOPT_ESTG,
}

var solqCodes = map[string]int{
	"single": gnssgo.SOLQ_SINGLE, "float": gnssgo.SOLQ_FLOAT, "dgps": gnssgo.SOLQ_DGPS,
	"sbas": gnssgo.SOLQ_SBAS, "fix": gnssgo.SOLQ_FIX,
}

// ToPrcOpt translates the YAML-facing Processing block into a
// gnssgo.PrcOpt, starting from gnssgo.DefaultPrcOpt so fields this
// config doesn't expose (SNR mask, excluded-satellite table) keep
// their solver defaults.
func (c *Config) ToPrcOpt() gnssgo.PrcOpt {
	opt := gnssgo.DefaultPrcOpt()
	opt.Elmin = c.Processing.ElevationMaskDeg * gnssgo.D2R
	opt.MaxGdop = c.Processing.MaxGdop
	opt.IonoOpt = ionoOptCodes[c.Processing.IonoOpt]
	opt.TropOpt = tropoOptCodes[c.Processing.TropoOpt]
	opt.RaimFde = c.Processing.RaimFde
	opt.Err[1] = c.Processing.PseudorangeSigma
	opt.Err[4] = c.Processing.DopplerSigma
	opt.InsOpt = c.ToInsOpt()
	return opt
}

// ToInsOpt translates the YAML-facing Ins block into a gnssgo.InsOpt.
func (c *Config) ToInsOpt() gnssgo.InsOpt {
	opt := gnssgo.DefaultInsOpt()
	if c.Ins.TightCoupling == "ppp" {
		opt.TightCoupling = gnssgo.INSTC_PPP
	} else {
		opt.TightCoupling = gnssgo.INSTC_SINGLE_DIFF
	}
	if q, ok := solqCodes[c.Ins.WorstInitQuality]; ok {
		opt.Iisu = q
	}
	return opt
}
