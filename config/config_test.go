package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, time.Second, cfg.TimeUnit.Duration)
	assert.Equal(t, 300*time.Second, cfg.Units(cfg.Auction.Length))
	assert.Equal(t, SolvencyBank, cfg.Auction.Solvency)
	assert.Equal(t, 240, cfg.Bidders.SnipeWindow)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.yaml")
	data := `
time_unit: 10ms
log:
  level: debug
auction:
  solvency: permissive
  max_open: 2
bidders:
  aggressive:
    count: 4
    budget: 1000
    budget_spread: 0
    tick_every: 1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.TimeUnit.Duration)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SolvencyPermissive, cfg.Auction.Solvency)
	assert.Equal(t, 2, cfg.Auction.MaxOpen)
	assert.Equal(t, 4, cfg.Bidders.Aggressive.Count)
	// untouched keys keep their defaults
	assert.Equal(t, 300, cfg.Auction.Length)
	assert.Equal(t, 2, cfg.Bidders.Conservative.Count)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.toml")
	data := `
time_unit = "5ms"

[regulator]
sanction_threshold = 20

[bootstrap]
stagger = "0s"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Millisecond, cfg.TimeUnit.Duration)
	assert.Equal(t, 20, cfg.Regulator.SanctionThreshold)
	assert.Zero(t, cfg.Bootstrap.Stagger.Duration)
	assert.Equal(t, 100.0, cfg.Regulator.MinFine)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "market.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o600))
	_, err = Load(ini)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("time_unit: soon\n"), 0o600))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLogLevel: "warn",
		EnvTimeUnit: "1ms",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, time.Millisecond, cfg.TimeUnit.Duration)

	env[EnvTimeUnit] = "fast"
	assert.ErrorIs(t, cfg.ApplyEnv(lookup), ErrInvalidConfig)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.TimeUnit = D(0)
	cfg.Auction.Solvency = "credit"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "time_unit")
	assert.Contains(t, err.Error(), "credit")
	assert.Contains(t, err.Error(), "loud")
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("250ms")))
	assert.Equal(t, 250*time.Millisecond, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "250ms", string(text))
}
