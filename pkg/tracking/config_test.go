package tracking

import (
	"errors"
	"testing"
	"time"
)

func TestProfiles_Valid(t *testing.T) {
	configs := []struct {
		name string
		cfg  Config
	}{
		{"Default", DefaultConfig()},
		{"Cautious", CautiousConfig()},
		{"Aggressive", AggressiveConfig()},
	}

	for _, tc := range configs {
		if err := tc.cfg.Validate(); err != nil {
			t.Errorf("%s: Validate: %v", tc.name, err)
		}
	}
}

func TestProfiles_DepthBounds(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		maxStep    int
		threshArea float64
	}{
		{"Default", DefaultConfig(), 100, 0.05},
		{"Cautious", CautiousConfig(), 100, 0.05},
		{"Aggressive", AggressiveConfig(), 200, 0.10},
	}

	for _, tc := range tests {
		if tc.cfg.MinStep != 20 {
			t.Errorf("%s: MinStep got %d, want 20", tc.name, tc.cfg.MinStep)
		}
		if tc.cfg.MaxStep != tc.maxStep {
			t.Errorf("%s: MaxStep got %d, want %d", tc.name, tc.cfg.MaxStep, tc.maxStep)
		}
		if tc.cfg.ThreshAreaFrac != tc.threshArea {
			t.Errorf("%s: ThreshAreaFrac got %v, want %v", tc.name, tc.cfg.ThreshAreaFrac, tc.threshArea)
		}
	}
}

func TestProfileConfig(t *testing.T) {
	cfg, err := ProfileConfig(ProfileAggressive)
	if err != nil {
		t.Fatalf("ProfileConfig: %v", err)
	}
	if cfg.MaxStep != 200 {
		t.Errorf("aggressive MaxStep: got %d", cfg.MaxStep)
	}

	if _, err := ProfileConfig(""); err != nil {
		t.Errorf("empty profile should map to default: %v", err)
	}

	_, err = ProfileConfig("reckless")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown profile: got %v, want ErrInvalidConfig", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero width", func(c *Config) { c.Geometry.Width = 0 }, "geometry"},
		{"zero area fraction", func(c *Config) { c.TargetAreaFraction = 0 }, "target_area_fraction"},
		{"negative threshold", func(c *Config) { c.ThreshXFrac = -0.1 }, "thresholds"},
		{"lateral below sdk min", func(c *Config) { c.LateralStep = 10 }, "lateral_step"},
		{"vertical above sdk max", func(c *Config) { c.VerticalStep = 600 }, "vertical_step"},
		{"zero scale", func(c *Config) { c.ScaleFactor = 0 }, "scale_factor"},
		{"min above max", func(c *Config) { c.MinStep = 150 }, "depth_steps"},
		{"zero control interval", func(c *Config) { c.ControlInterval = 0 }, "control_interval"},
		{"negative detector budget", func(c *Config) { c.DetectorBudget = -time.Second }, "detector_budget"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()

			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("got %v, want *ConfigError", err)
			}
			if cerr.Field != tc.field {
				t.Errorf("Field: got %q, want %q", cerr.Field, tc.field)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("ConfigError should match ErrInvalidConfig")
			}
		})
	}
}

func TestDetectorTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.DetectorTimeout(); got != 80*time.Millisecond {
		t.Errorf("default budget: got %v, want 80ms", got)
	}
	cfg.DetectorBudget = 250 * time.Millisecond
	if got := cfg.DetectorTimeout(); got != 250*time.Millisecond {
		t.Errorf("explicit budget: got %v, want 250ms", got)
	}
}

func TestThresholds(t *testing.T) {
	cfg := DefaultConfig()
	th := cfg.Thresholds()
	if th.X != 48 || th.Y != 36 {
		t.Errorf("Thresholds: got x=%v y=%v, want 48, 36", th.X, th.Y)
	}
	if want := 0.05 * 276480; th.Area != want {
		t.Errorf("Thresholds area: got %v, want %v", th.Area, want)
	}
}
