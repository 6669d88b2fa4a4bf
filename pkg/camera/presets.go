package camera

// Preset names for common configurations
const (
	PresetTello  = "tello"
	PresetLowRes = "lowres"
	PresetWebcam = "webcam"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetTello:  DefaultConfig(),
		PresetLowRes: LowResConfig(),
		PresetWebcam: WebcamConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{PresetTello, PresetLowRes, PresetWebcam}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// LowResConfig processes the drone stream at 640x480 for slower machines.
func LowResConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// WebcamConfig reads the first local camera. Useful for bench testing the
// tracking loop with the dry-run actuator.
func WebcamConfig() Config {
	cfg := DefaultConfig()
	cfg.Source = "0"
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}
