package collector

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.Listen == "" || config.DatabasePath == "" {
		t.Fatalf("defaults must be complete: %+v", config)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector.yaml")
	os.WriteFile(path, []byte("listen: \"0.0.0.0:8080\"\n"), 0644)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Listen != "0.0.0.0:8080" {
		t.Fatalf("unexpected listen %q", config.Listen)
	}
	if config.DatabasePath != DefaultConfig().DatabasePath {
		t.Fatal("unset keys must keep their defaults")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector.yaml")
	os.WriteFile(path, []byte("listen: [unclosed"), 0644)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
