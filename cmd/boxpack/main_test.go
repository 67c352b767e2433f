package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BoxPack/internal/model"
	"github.com/piwi3910/BoxPack/internal/project"
)

// runCLI runs the command with an isolated app config and returns its exit
// code and output.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	if len(args) > 0 {
		args = append(args, "--app-config", filepath.Join(t.TempDir(), "config.json"))
	}
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeInstance(t *testing.T, inst model.Instance) string {
	t.Helper()
	data, err := json.Marshal(inst)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "instance.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func squares() model.Instance {
	rects := make([]model.Rectangle, 4)
	for i := range rects {
		rects[i] = model.NewRectangle(i, 5, 5)
	}
	inst := model.NewInstance(10, rects)
	inst.ID = "squares"
	return inst
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: boxpack")

	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{"pack"}, &out, &out))
	assert.Contains(t, out.String(), `unknown command "pack"`)
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI(t, "solve", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "--placement")
}

func TestSolve_JSONInstance(t *testing.T) {
	path := writeInstance(t, squares())
	code, stdout, stderr := runCLI(t, "solve", "-i", path, "--placement", "shelf-first-fit")
	require.Equal(t, 0, code, stderr)

	var res model.SolveResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, 1, res.Stats.NumBoxes)
	assert.Equal(t, 1, res.Stats.LowerBound)
	assert.InDelta(t, 1.0, res.Stats.Utilization, 1e-9)
	assert.Contains(t, stderr, "greedy construction finished")
}

func TestSolve_CSVWithExports(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rects.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("width,height,qty\n30,20,4\n50,50,1\n"), 0644))
	outPath := filepath.Join(dir, "result.json")
	pdfPath := filepath.Join(dir, "layout.pdf")
	labelsPath := filepath.Join(dir, "labels.pdf")

	code, _, stderr := runCLI(t, "solve", "-i", csvPath, "-l", "60",
		"--profile", "balanced", "--max-iterations", "20",
		"-o", outPath, "--pdf", pdfPath, "--labels", labelsPath)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var res model.SolveResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, 5, res.Solution.NumRectangles())
	assert.Equal(t, 60, res.Solution.L)

	for _, p := range []string{pdfPath, labelsPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestSolve_Errors(t *testing.T) {
	tooBig := model.NewInstance(10, []model.Rectangle{model.NewRectangle(0, 11, 2)})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"solve"}, "--input is required"},
		{"invalid option", []string{"solve", "-i", writeInstance(t, squares()), "--placement", "diagonal"}, "invalid option"},
		{"unknown profile", []string{"solve", "-i", writeInstance(t, squares()), "--profile", "nope"}, "profile not found"},
		{"infeasible", []string{"solve", "-i", writeInstance(t, tooBig)}, "infeasible"},
		{"unknown flag", []string{"solve", "--colour"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, strings.ToLower(stderr), tt.want)
		})
	}
}

func TestSolve_RecordsRecentInstance(t *testing.T) {
	path := writeInstance(t, squares())
	appPath := filepath.Join(t.TempDir(), "config.json")
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"solve", "-i", path, "--app-config", appPath}, &stdout, &stderr), stderr.String())

	app, err := project.LoadAppConfig(appPath)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, app.RecentInstances)
}

func TestCompare_Table(t *testing.T) {
	path := writeInstance(t, squares())
	code, stdout, stderr := runCLI(t, "compare", "-i", path, "--max-iterations", "10")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "SCENARIO")
	assert.Contains(t, stdout, "Current Settings")
	assert.Contains(t, stdout, "Genetic Algorithm")
}

func TestCompare_JSON(t *testing.T) {
	path := writeInstance(t, squares())
	code, stdout, stderr := runCLI(t, "compare", "-i", path, "--json", "--max-iterations", "10")
	require.Equal(t, 0, code, stderr)

	var rows []scenarioRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.Empty(t, r.Error, r.Name)
		assert.GreaterOrEqual(t, r.Boxes, r.LowerBound, r.Name)
		assert.Equal(t, 1, r.LowerBound, r.Name)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	args := []string{"generate", "-n", "12", "--l", "40", "--max-w", "20", "--max-h", "20", "--seed", "7"}
	code, first, stderr := runCLI(t, args...)
	require.Equal(t, 0, code, stderr)
	_, again, _ := runCLI(t, args...)

	var inst, second model.Instance
	require.NoError(t, json.Unmarshal([]byte(first), &inst))
	require.NoError(t, json.Unmarshal([]byte(again), &second))
	assert.Equal(t, inst.Rectangles, second.Rectangles)
	assert.Equal(t, 40, inst.L)
	require.Len(t, inst.Rectangles, 12)
	for _, r := range inst.Rectangles {
		assert.LessOrEqual(t, r.Width, 20)
		assert.LessOrEqual(t, r.Height, 20)
	}
}

func TestGenerate_ToFileAndSolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.json")
	code, _, stderr := runCLI(t, "generate", "-n", "30", "--id", "gen", "-o", path)
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCLI(t, "solve", "-i", path, "--algorithm", "genetic")
	require.Equal(t, 0, code, stderr)
	var res model.SolveResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, 30, res.Solution.NumRectangles())
	assert.GreaterOrEqual(t, res.Stats.NumBoxes, res.Stats.LowerBound)
}

func TestGenerate_InvalidRange(t *testing.T) {
	code, _, stderr := runCLI(t, "generate", "--min-w", "30", "--max-w", "10")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "boxpack generate")
}

func TestProfiles_List(t *testing.T) {
	profilesPath := filepath.Join(t.TempDir(), "profiles.json")
	custom := project.Profile{Name: "mine", Description: "my settings", Settings: model.DefaultSettings()}
	require.NoError(t, project.SaveCustomProfiles(profilesPath, []project.Profile{custom}))

	code, stdout, stderr := runCLI(t, "profiles", "--profiles-file", profilesPath)
	require.Equal(t, 0, code, stderr)
	for _, name := range []string{"fast", "balanced", "thorough", "evolve", "mine"} {
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "custom")
}
