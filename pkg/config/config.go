// Package config provides configuration management for the face recognizer.
// It loads configuration from YAML files with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all face recognizer configuration.
type Config struct {
	Models    ModelsConfig    `yaml:"models"`
	Detection DetectionConfig `yaml:"detection"`
	Match     MatchConfig     `yaml:"match"`
	Gallery   GalleryConfig   `yaml:"gallery"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ModelsConfig holds the native model file locations and inference settings.
type ModelsConfig struct {
	DetectorPath string `yaml:"detector_path"`
	EmbedderPath string `yaml:"embedder_path"`
	// Backend selects the DNN execution backend: auto, cpu, cuda or
	// openvino.
	Backend string `yaml:"backend"`
}

// DetectionConfig holds multi-scale detection settings.
type DetectionConfig struct {
	// Window is the pixel size below which one full-resolution pass covers
	// the whole image.
	Window int `yaml:"window"`
	// ScaleStep is subtracted from the scale factor after each pass.
	ScaleStep float64 `yaml:"scale_step"`
	// ScaleFloor stops the multi-scale loop once the factor drops to it.
	ScaleFloor float64 `yaml:"scale_floor"`
	// DedupOverlap is the box overlap percentage above which two detections
	// count as the same face. Zero disables the dedup post-pass.
	DedupOverlap int `yaml:"dedup_overlap"`
}

// MatchConfig holds identity matching settings.
type MatchConfig struct {
	// Threshold is the average similarity at or above which a subject is an
	// exact match. Calibrated against the embedder's native cosine scale.
	Threshold float64 `yaml:"threshold"`
}

// GalleryConfig holds known-faces gallery settings.
type GalleryConfig struct {
	// Dir is the root directory with one subdirectory per subject.
	Dir string `yaml:"dir"`
	// CacheFile persists built galleries between runs. Empty disables it.
	CacheFile string `yaml:"cache_file"`
	// EncryptCache encrypts the cache file at rest.
	EncryptCache bool `yaml:"encrypt_cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local/share/facerec")
	return &Config{
		Models: ModelsConfig{
			DetectorPath: filepath.Join(dataDir, "models/face_detection_yunet_2023mar.onnx"),
			EmbedderPath: filepath.Join(dataDir, "models/face_recognition_sface_2021dec.onnx"),
			Backend:      "auto",
		},
		Detection: DetectionConfig{
			Window:       300,
			ScaleStep:    0.2,
			ScaleFloor:   0.3,
			DedupOverlap: 42,
		},
		Match: MatchConfig{
			Threshold: 0.363,
		},
		Gallery: GalleryConfig{
			Dir:          filepath.Join(dataDir, "faces"),
			CacheFile:    filepath.Join(dataDir, "gallery.cache"),
			EncryptCache: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load loads configuration from the specified file on top of the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, err
	}

	return config, nil
}

// LoadDefault tries to load configuration from default locations.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat("/etc/facerec/facerec.yaml"); err == nil {
		return Load("/etc/facerec/facerec.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}

	userConfig := filepath.Join(homeDir, ".config/facerec/facerec.yaml")
	if _, err := os.Stat(userConfig); err == nil {
		return Load(userConfig)
	}

	return DefaultConfig(), nil
}

// ExpandPath expands ~ and environment variables in a path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// ExpandPaths expands all paths in the configuration.
func (c *Config) ExpandPaths() {
	c.Models.DetectorPath = ExpandPath(c.Models.DetectorPath)
	c.Models.EmbedderPath = ExpandPath(c.Models.EmbedderPath)
	c.Gallery.Dir = ExpandPath(c.Gallery.Dir)
	c.Gallery.CacheFile = ExpandPath(c.Gallery.CacheFile)
	c.Logging.File = ExpandPath(c.Logging.File)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Models.DetectorPath == "" {
		return fmt.Errorf("detector model path must not be empty")
	}
	if c.Models.EmbedderPath == "" {
		return fmt.Errorf("embedder model path must not be empty")
	}
	validBackends := map[string]bool{"": true, "auto": true, "cpu": true, "cuda": true, "openvino": true}
	if !validBackends[c.Models.Backend] {
		return fmt.Errorf("invalid inference backend: %s (must be auto, cpu, cuda, or openvino)", c.Models.Backend)
	}

	if c.Detection.Window <= 0 {
		return fmt.Errorf("detection window must be positive, got %d", c.Detection.Window)
	}
	if c.Detection.ScaleStep <= 0 || c.Detection.ScaleStep >= 1 {
		return fmt.Errorf("scale_step must be between 0 and 1, got %f", c.Detection.ScaleStep)
	}
	if c.Detection.ScaleFloor <= 0 || c.Detection.ScaleFloor >= 1 {
		return fmt.Errorf("scale_floor must be between 0 and 1, got %f", c.Detection.ScaleFloor)
	}
	if c.Detection.DedupOverlap < 0 || c.Detection.DedupOverlap > 100 {
		return fmt.Errorf("dedup_overlap must be between 0 and 100, got %d", c.Detection.DedupOverlap)
	}

	if c.Match.Threshold <= 0 || c.Match.Threshold > 1 {
		return fmt.Errorf("match threshold must be between 0 and 1, got %f", c.Match.Threshold)
	}

	if c.Gallery.Dir == "" {
		return fmt.Errorf("gallery dir must not be empty")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}
