package engine

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/piwi3910/BoxPack/internal/model"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func instanceOf(l int, dims ...[2]int) model.Instance {
	rects := make([]model.Rectangle, len(dims))
	for i, d := range dims {
		rects[i] = model.NewRectangle(i, d[0], d[1])
	}
	return model.NewInstance(l, rects)
}

func generated(t *testing.T, seed int64, cfg model.GeneratorConfig) model.Instance {
	t.Helper()
	inst, err := model.GenerateInstance(cfg, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return inst
}

func smallConfig() model.GeneratorConfig {
	return model.GeneratorConfig{L: 40, NumRect: 40, MinW: 3, MaxW: 20, MinH: 3, MaxH: 20}
}

// snapshot serializes a solution so that two states can be compared byte for
// byte.
func snapshot(t *testing.T, sol *model.Solution) string {
	t.Helper()
	data, err := json.Marshal(sol)
	require.NoError(t, err)
	return string(data)
}

// requireComplete checks that every rectangle of inst appears exactly once
// in a valid, overlap-free solution.
func requireComplete(t *testing.T, inst model.Instance, sol *model.Solution) {
	t.Helper()
	require.NoError(t, sol.Validate(true))
	require.Equal(t, len(inst.Rectangles), sol.NumRectangles())
	ids := make(map[int]bool)
	for _, r := range sol.Rectangles() {
		ids[r.ID] = true
	}
	for _, r := range inst.Rectangles {
		require.True(t, ids[r.ID], "rectangle %d missing", r.ID)
	}
}

var constructionKinds = []model.PlacementKind{
	model.PlacementShelfFirstFit,
	model.PlacementShelfBestAreaFit,
	model.PlacementBottomLeft,
}
