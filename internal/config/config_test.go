package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywave-nav/tcgnssins/gnssgo"
)

const validYAML = `
processing:
  elevation_mask_deg: 10
  max_gdop: 25
  iono_opt: brdc
  tropo_opt: saas
  raim_fde: true
  pseudorange_sigma_m: 0.3
  doppler_sigma_hz: 1.0
ins:
  tight_coupling: single_diff
  worst_init_quality: single
server:
  log_level: info
  metrics_listen: ":9469"
  input_buffer: 32
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Processing.ElevationMaskDeg)
	assert.Equal(t, ":9469", cfg.Server.MetricsListen)
}

func TestLoadRejectsElevationOutOfRange(t *testing.T) {
	bad := validYAML + "\n" // unused: the document below is written out in full
	path := writeTemp(t, `
processing:
  elevation_mask_deg: 120
  max_gdop: 25
  iono_opt: brdc
  tropo_opt: saas
  raim_fde: true
  pseudorange_sigma_m: 0.3
  doppler_sigma_hz: 1.0
ins:
  tight_coupling: single_diff
  worst_init_quality: single
server:
  log_level: info
  metrics_listen: ":9469"
  input_buffer: 32
`)
	_ = bad
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNegativeGdop(t *testing.T) {
	path := writeTemp(t, `
processing:
  elevation_mask_deg: 10
  max_gdop: -1
  iono_opt: brdc
  tropo_opt: saas
  raim_fde: true
  pseudorange_sigma_m: 0.3
  doppler_sigma_hz: 1.0
ins:
  tight_coupling: single_diff
  worst_init_quality: single
server:
  log_level: info
  metrics_listen: ":9469"
  input_buffer: 32
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestToPrcOptTranslation(t *testing.T) {
	path := writeTemp(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	opt := cfg.ToPrcOpt()
	assert.InDelta(t, 10.0*gnssgo.D2R, opt.Elmin, 1e-9)
	assert.Equal(t, gnssgo.IONOOPT_BRDC, opt.IonoOpt)
	assert.Equal(t, gnssgo.TROPOPT_SAAS, opt.TropOpt)
	assert.Equal(t, gnssgo.SOLQ_SINGLE, opt.InsOpt.Iisu)
}
