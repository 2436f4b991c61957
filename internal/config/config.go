package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the project paths and batching parameters, normally loaded
// from settings.yaml.
type Config struct {
	LabelsFile      string `yaml:"labels_file"`
	GroundTruthFile string `yaml:"ground_truth_file"`
	ImageURLFile    string `yaml:"image_url_file"`

	OutputDirectory  string `yaml:"output_directory"`
	SamplesDirectory string `yaml:"samples_directory"`
	StorageDirectory string `yaml:"storage_directory"`

	// SetCapacity is the maximum number of samples per sample set.
	SetCapacity int `yaml:"set_capacity"`
	// MaxWorkers bounds concurrent image downloads.
	MaxWorkers int `yaml:"max_workers"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		LabelsFile:       "data/class-descriptions.csv",
		GroundTruthFile:  "data/annotations-bbox.csv",
		ImageURLFile:     "data/images-boxable.csv",
		OutputDirectory:  "output",
		SamplesDirectory: "output/sample_sets",
		StorageDirectory: "storage",
		SetCapacity:      5000,
		MaxWorkers:       5,
	}
}

// LoadFromFile loads configuration from a YAML file. Fields missing from
// the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SetCapacity < 1 {
		return fmt.Errorf("set_capacity must be positive")
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be positive")
	}
	if c.SamplesDirectory == "" {
		return fmt.Errorf("samples_directory cannot be empty")
	}
	if c.StorageDirectory == "" {
		return fmt.Errorf("storage_directory cannot be empty")
	}
	if c.OutputDirectory == "" {
		return fmt.Errorf("output_directory cannot be empty")
	}
	return nil
}
