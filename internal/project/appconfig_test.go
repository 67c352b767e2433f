package project

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultAppConfig()
	cfg.DefaultProfile = "balanced"
	cfg.DefaultBoxLength = 250
	cfg.RecentInstances = []string{"/tmp/a.json", "/tmp/b.csv"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.DefaultProfile != "balanced" {
		t.Errorf("expected profile balanced, got %q", loaded.DefaultProfile)
	}
	if loaded.DefaultBoxLength != 250 {
		t.Errorf("expected box length 250, got %d", loaded.DefaultBoxLength)
	}
	if len(loaded.RecentInstances) != 2 || loaded.RecentInstances[1] != "/tmp/b.csv" {
		t.Errorf("recent instances not preserved: %v", loaded.RecentInstances)
	}
}

func TestLoadAppConfig_MissingFileReturnsDefaults(t *testing.T) {
	loaded, err := LoadAppConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if loaded.DefaultBoxLength != DefaultAppConfig().DefaultBoxLength {
		t.Errorf("expected default box length, got %d", loaded.DefaultBoxLength)
	}
	if loaded.RecentInstances == nil {
		t.Error("RecentInstances should never be nil")
	}
}

func TestLoadAppConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_profile":"fast"}`), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.DefaultProfile != "fast" || loaded.DefaultBoxLength != 100 {
		t.Errorf("unexpected config %+v", loaded)
	}
	if loaded.RecentInstances == nil {
		t.Error("RecentInstances should never be nil")
	}
}

func TestLoadAppConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestAddRecentInstance(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentInstance("a")
	cfg.AddRecentInstance("b")
	cfg.AddRecentInstance("a")

	if len(cfg.RecentInstances) != 2 || cfg.RecentInstances[0] != "a" || cfg.RecentInstances[1] != "b" {
		t.Errorf("expected [a b], got %v", cfg.RecentInstances)
	}

	for i := 0; i < MaxRecentInstances+5; i++ {
		cfg.AddRecentInstance(fmt.Sprintf("inst-%d", i))
	}
	if len(cfg.RecentInstances) != MaxRecentInstances {
		t.Errorf("expected %d recent instances, got %d", MaxRecentInstances, len(cfg.RecentInstances))
	}
	if cfg.RecentInstances[0] != fmt.Sprintf("inst-%d", MaxRecentInstances+4) {
		t.Errorf("most recent should come first, got %q", cfg.RecentInstances[0])
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.json" || filepath.Base(filepath.Dir(path)) != ".boxpack" {
		t.Errorf("unexpected default config path %q", path)
	}
}
