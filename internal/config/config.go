// Package config handles meshview configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Export  ExportConfig  `yaml:"export"`
	Picking PickingConfig `yaml:"picking"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig holds load-time processing settings.
type ModelConfig struct {
	NormalizeOnLoad   bool `yaml:"normalize_on_load"`
	SynthesizeNormals bool `yaml:"synthesize_normals"` // Only when the file has no vn
}

// ExportConfig holds OBJ/MTL export settings.
type ExportConfig struct {
	Header      string `yaml:"header"`       // Comment written at the top of both files
	DefaultName string `yaml:"default_name"` // Used when no output path is given
}

// PickingConfig holds selection settings.
type PickingConfig struct {
	// Background is the clear colour of the offscreen pick pass.
	Background [3]int `yaml:"background"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			NormalizeOnLoad:   true,
			SynthesizeNormals: true,
		},
		Export: ExportConfig{
			Header:      "Generated by meshview",
			DefaultName: "exported",
		},
		Picking: PickingConfig{
			Background: [3]int{255, 255, 255},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
