package model

import (
	"fmt"
	"math/rand"
)

// GeneratorConfig bounds the dimensions of randomly generated rectangles.
type GeneratorConfig struct {
	L       int `json:"l" mapstructure:"l" validate:"min=1,max=10000"`
	NumRect int `json:"numRect" mapstructure:"num_rect" validate:"min=1,max=10000"`
	MinW    int `json:"minW" mapstructure:"min_w" validate:"min=1,ltefield=MaxW"`
	MaxW    int `json:"maxW" mapstructure:"max_w" validate:"min=1,ltefield=L"`
	MinH    int `json:"minH" mapstructure:"min_h" validate:"min=1,ltefield=MaxH"`
	MaxH    int `json:"maxH" mapstructure:"max_h" validate:"min=1,ltefield=L"`
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{L: 100, NumRect: 50, MinW: 5, MaxW: 50, MinH: 5, MaxH: 50}
}

// GenerateInstance draws NumRect rectangles with uniform dimensions in the
// configured ranges.
func GenerateInstance(cfg GeneratorConfig, rng *rand.Rand) (Instance, error) {
	if err := validate.Struct(cfg); err != nil {
		return Instance{}, fmt.Errorf("invalid generator config: %w", err)
	}
	rects := make([]Rectangle, cfg.NumRect)
	for i := range rects {
		w := cfg.MinW + rng.Intn(cfg.MaxW-cfg.MinW+1)
		h := cfg.MinH + rng.Intn(cfg.MaxH-cfg.MinH+1)
		rects[i] = NewRectangle(i, w, h)
	}
	return NewInstance(cfg.L, rects), nil
}
