package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/BoxPack/internal/model"
)

// Profile is a named set of solver settings.
type Profile struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	BuiltIn     bool                 `json:"-"`
	Settings    model.SolverSettings `json:"settings"`
}

// ErrProfileNotFound is returned by FindProfile for unknown names.
var ErrProfileNotFound = errors.New("profile not found")

// BuiltInProfiles returns the profiles shipped with the tool, derived from
// base.
func BuiltInProfiles(base model.SolverSettings) []Profile {
	fast := base
	fast.Algorithm = model.AlgorithmGreedy
	fast.Selection = model.SelectionLargestAreaFirst
	fast.Placement = model.PlacementShelfBestAreaFit

	balanced := fast
	balanced.Algorithm = model.AlgorithmLocalSearch
	balanced.Neighborhood = model.NeighborhoodGeometry
	balanced.Objective = model.ObjectiveUtilization
	balanced.Strategy = model.StrategyHillClimbing
	balanced.Repack = ""

	thorough := base
	thorough.Algorithm = model.AlgorithmLocalSearch
	thorough.Placement = model.PlacementBottomLeft
	thorough.Neighborhood = model.NeighborhoodOverlap
	thorough.Objective = model.ObjectivePackingPenalty
	thorough.Strategy = model.StrategySimulatedAnnealing
	thorough.Repack = ""
	thorough.MaxIterations = max(base.MaxIterations, 1000)

	evolve := fast
	evolve.Algorithm = model.AlgorithmGenetic
	evolve.Placement = model.PlacementBottomLeft

	return []Profile{
		{Name: "fast", Description: "Greedy shelf best-area-fit construction", BuiltIn: true, Settings: fast},
		{Name: "balanced", Description: "Shelf construction improved by geometry local search", BuiltIn: true, Settings: balanced},
		{Name: "thorough", Description: "Overlap relaxation with simulated annealing", BuiltIn: true, Settings: thorough},
		{Name: "evolve", Description: "Genetic search over bottom-left insertion orders", BuiltIn: true, Settings: evolve},
	}
}

// DefaultProfilesPath returns the default file for custom profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles validates and writes custom profiles as JSON.
func SaveCustomProfiles(path string, profiles []Profile) error {
	for _, p := range profiles {
		if err := validateProfile(p); err != nil {
			return err
		}
	}
	return writeJSON(path, profiles)
}

// LoadCustomProfiles reads custom profiles. A missing file yields none.
func LoadCustomProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Profile{}, nil
		}
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	// Settings left out of a profile keep their defaults.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	profiles := make([]Profile, len(raw))
	for i, r := range raw {
		profiles[i].Settings = model.DefaultSettings()
		if err := json.Unmarshal(r, &profiles[i]); err != nil {
			return nil, fmt.Errorf("failed to parse profile %d: %w", i+1, err)
		}
		if err := validateProfile(profiles[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// FindProfile looks name up among the custom profiles first, then the
// built-in ones.
func FindProfile(name string, base model.SolverSettings, custom []Profile) (Profile, error) {
	for _, p := range custom {
		if p.Name == name {
			return p, nil
		}
	}
	for _, p := range BuiltInProfiles(base) {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

func validateProfile(p Profile) error {
	if p.Name == "" {
		return errors.New("profile has no name")
	}
	if err := p.Settings.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}
