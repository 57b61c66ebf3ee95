package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadConfig_AppliesDefaults verifies yaml loading and the default
// segment sizing and climber hyperparameters.
func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
trace:
  format: dns
  path: /data/dns.trace
policies:
  - type: window-ca
    maximum_size: 100
  - type: adaptive-ca
    maximum_size: 50
    climber:
      strategy: nadam
`))
	require.NoError(t, err)
	require.Equal(t, "dns", cfg.Trace.Format)
	require.Len(t, cfg.Policies, 2)

	wca := cfg.Policies[0]
	require.Equal(t, PolicyWindowCA, wca.Type)
	require.Equal(t, 100, wca.MaximumSize)
	require.Equal(t, 0.99, wca.PercentMain)
	require.Equal(t, 0.80, wca.PercentMainProtected)
	require.Equal(t, 10, wca.MaxLists)
	require.Equal(t, 1.0, wca.K)

	aca := cfg.Policies[1]
	require.Equal(t, PolicyAdaptiveCA, aca.Type)
	require.NotNil(t, aca.Climber)
	require.Equal(t, "nadam", aca.Climber.Strategy)
	require.Equal(t, 0.9, aca.Climber.Beta1)
	require.Equal(t, 0.999, aca.Climber.Beta2)
	require.Equal(t, 1e-8, aca.Climber.Epsilon)
}

// TestLoadConfig_AdaptiveGetsDefaultClimber verifies a missing climber block
// falls back to the simple strategy.
func TestLoadConfig_AdaptiveGetsDefaultClimber(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
trace:
  format: latency
  path: /data/latency.trace
policies:
  - type: adaptive-ca
    maximum_size: 10
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Policies[0].Climber)
	require.Equal(t, "simple", cfg.Policies[0].Climber.Strategy)
	require.Positive(t, cfg.Policies[0].Climber.PercentPivot)
	require.Positive(t, cfg.Policies[0].Climber.PercentSample)
}

// TestLoadConfig_Rejections verifies the validation errors.
func TestLoadConfig_Rejections(t *testing.T) {
	cases := map[string]string{
		"unknown format": `
trace: {format: bogus, path: /t}
policies: [{type: cra, maximum_size: 10}]
`,
		"missing path": `
trace: {format: dns}
policies: [{type: cra, maximum_size: 10}]
`,
		"no policies": `
trace: {format: dns, path: /t}
policies: []
`,
		"unknown policy type": `
trace: {format: dns, path: /t}
policies: [{type: bogus, maximum_size: 10}]
`,
		"non-positive size": `
trace: {format: dns, path: /t}
policies: [{type: cra, maximum_size: 0}]
`,
		"unknown climber strategy": `
trace: {format: dns, path: /t}
policies: [{type: adaptive-ca, maximum_size: 10, climber: {strategy: bogus}}]
`,
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, yaml))
			require.Error(t, err)
		})
	}
}

// TestLoadConfig_MissingFile verifies the stat error path.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
