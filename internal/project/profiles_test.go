package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/BoxPack/internal/model"
)

func TestBuiltInProfiles_AreValid(t *testing.T) {
	profiles := BuiltInProfiles(model.DefaultSettings())
	if len(profiles) != 4 {
		t.Fatalf("expected 4 built-in profiles, got %d", len(profiles))
	}
	for _, p := range profiles {
		if !p.BuiltIn {
			t.Errorf("profile %q should be marked built-in", p.Name)
		}
		if err := p.Settings.Validate(); err != nil {
			t.Errorf("profile %q has invalid settings: %v", p.Name, err)
		}
	}
}

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")

	s := model.DefaultSettings()
	s.Algorithm = model.AlgorithmLocalSearch
	s.Neighborhood = model.NeighborhoodPermutation
	s.MaxIterations = 77
	profiles := []Profile{
		{Name: "perm", Description: "permutation search", Settings: s},
		{Name: "plain", BuiltIn: true, Settings: model.DefaultSettings()},
	}

	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles failed: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].Settings != s {
		t.Errorf("settings not preserved: %+v", loaded[0].Settings)
	}
	if loaded[1].BuiltIn {
		t.Error("loaded profiles must not be marked built-in")
	}
}

func TestLoadCustomProfiles_PartialSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	data := `[{"name":"sa","settings":{"algorithm":"local-search","strategy":"simulated-annealing","temperature":5}}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles failed: %v", err)
	}
	got := loaded[0].Settings
	if got.Strategy != model.StrategySimulatedAnnealing || got.Temperature != 5 {
		t.Errorf("explicit settings not applied: %+v", got)
	}
	if got.NumNeighbors != model.DefaultSettings().NumNeighbors {
		t.Errorf("missing settings should keep defaults, got %d neighbors", got.NumNeighbors)
	}
}

func TestLoadCustomProfiles_Errors(t *testing.T) {
	dir := t.TempDir()

	loaded, err := LoadCustomProfiles(filepath.Join(dir, "missing.json"))
	if err != nil || len(loaded) != 0 {
		t.Errorf("missing file should yield no profiles, got %v, %v", loaded, err)
	}

	cases := map[string]string{
		"malformed.json": "[{",
		"noname.json":    `[{"settings":{}}]`,
		"invalid.json":   `[{"name":"bad","settings":{"placement":"diagonal"}}]`,
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadCustomProfiles(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSaveCustomProfiles_RejectsInvalid(t *testing.T) {
	bad := model.DefaultSettings()
	bad.NumNeighbors = 0
	err := SaveCustomProfiles(filepath.Join(t.TempDir(), "p.json"), []Profile{{Name: "x", Settings: bad}})
	if !errors.Is(err, model.ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}
}

func TestFindProfile(t *testing.T) {
	base := model.DefaultSettings()
	custom := []Profile{{Name: "fast", Description: "mine", Settings: base}}

	p, err := FindProfile("fast", base, custom)
	if err != nil || p.Description != "mine" {
		t.Errorf("custom profiles should shadow built-ins, got %+v, %v", p, err)
	}

	p, err = FindProfile("thorough", base, custom)
	if err != nil || p.Settings.Neighborhood != model.NeighborhoodOverlap {
		t.Errorf("expected built-in thorough profile, got %+v, %v", p, err)
	}

	if _, err := FindProfile("nope", base, nil); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}
