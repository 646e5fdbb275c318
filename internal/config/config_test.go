package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero block size", func(c *Config) { c.BlockSize = 0 }},
		{"negative sample rate", func(c *Config) { c.SampleRate = -1 }},
		{"inverted bass band", func(c *Config) { c.BassBand = Band{Low: 150, High: 40} }},
		{"empty mid band", func(c *Config) { c.MidBand = Band{Low: 500, High: 500} }},
		{"negative high band", func(c *Config) { c.HighBand = Band{Low: -10, High: 6000} }},
		{"alpha of one", func(c *Config) { c.AvgAlpha = 1 }},
		{"zero average floor", func(c *Config) { c.AvgFloor = 0 }},
		{"zero envelope decay", func(c *Config) { c.EnvDecay = 0 }},
		{"zero peak decay", func(c *Config) { c.PeakDecay = 0 }},
		{"onset trigger at unity", func(c *Config) { c.OnsetTrigger = 1 }},
		{"zero debounce", func(c *Config) { c.OnsetDebounce = 0 }},
		{"zero cooldown", func(c *Config) { c.SwitchCooldown = 0 }},
		{"densities out of order", func(c *Config) { c.IntenseDensity = c.ActiveDensity }},
		{"zero hue window", func(c *Config) { c.HueWindow = 0 }},
		{"idle brightness above one", func(c *Config) { c.IdleBrightness = 1.5 }},
		{"zero hue step", func(c *Config) { c.HueStep = 0 }},
		{"zero tick period", func(c *Config) { c.TickPeriod = 0 }},
		{"zero gamma", func(c *Config) { c.Gamma = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
