package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	if cfg.SetCapacity != 5000 {
		t.Errorf("SetCapacity = %d, want 5000", cfg.SetCapacity)
	}
	if cfg.MaxWorkers != 5 {
		t.Errorf("MaxWorkers = %d, want 5", cfg.MaxWorkers)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `labels_file: data/labels.csv
ground_truth_file: data/gt.csv
image_url_file: data/urls.csv
storage_directory: /mnt/big/storage
set_capacity: 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if cfg.StorageDirectory != "/mnt/big/storage" {
		t.Errorf("StorageDirectory = %q", cfg.StorageDirectory)
	}
	if cfg.SetCapacity != 100 {
		t.Errorf("SetCapacity = %d, want 100", cfg.SetCapacity)
	}
	// Fields absent from the file keep their defaults.
	if cfg.MaxWorkers != 5 {
		t.Errorf("MaxWorkers = %d, want default 5", cfg.MaxWorkers)
	}
	if cfg.SamplesDirectory == "" {
		t.Error("SamplesDirectory default missing")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("set_capacity: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected zero set_capacity to be rejected")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	cfg := Default()
	cfg.StorageDirectory = "/tmp/sample-storage"
	cfg.MaxWorkers = 12
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if loaded.StorageDirectory != cfg.StorageDirectory {
		t.Errorf("StorageDirectory = %q, want %q", loaded.StorageDirectory, cfg.StorageDirectory)
	}
	if loaded.MaxWorkers != 12 {
		t.Errorf("MaxWorkers = %d, want 12", loaded.MaxWorkers)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.SetCapacity = 0 }},
		{"negative workers", func(c *Config) { c.MaxWorkers = -1 }},
		{"empty samples dir", func(c *Config) { c.SamplesDirectory = "" }},
		{"empty storage dir", func(c *Config) { c.StorageDirectory = "" }},
		{"empty output dir", func(c *Config) { c.OutputDirectory = "" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
