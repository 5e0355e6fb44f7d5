package flowtopo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		TrajectoriesPerSeed: 1,
		Years:               50,
		NonMovingDistance:   20,
		SlowMovingDistance:  100,
		EndingPercent:       25,
		StartingPercent:     25,
		ThroughFlowPercent:  50,
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfigValidateRejectsNonPhysical(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero trajectories per seed", func(c *Config) { c.TrajectoriesPerSeed = 0 }},
		{"zero years", func(c *Config) { c.Years = 0 }},
		{"negative non-moving distance", func(c *Config) { c.NonMovingDistance = -1 }},
		{"slow below non-moving", func(c *Config) { c.SlowMovingDistance = 10 }},
		{"ending percent above 100", func(c *Config) { c.EndingPercent = 101 }},
		{"negative starting percent", func(c *Config) { c.StartingPercent = -5 }},
		{"through-flow percent above 100", func(c *Config) { c.ThroughFlowPercent = 250 }},
		{"epsilon at half cell", func(c *Config) { c.SinkSampleEpsilon = 0.5 }},
		{"negative epsilon", func(c *Config) { c.SinkSampleEpsilon = -0.1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigEpsilonDefault(t *testing.T) {
	cfg := validConfig()
	require.Equal(t, DefaultSinkSampleEpsilon, cfg.epsilon())

	cfg.SinkSampleEpsilon = 0.1
	require.Equal(t, 0.1, cfg.epsilon())
}
