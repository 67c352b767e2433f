package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/piwi3910/BoxPack/internal/engine"
)

type scenarioRow struct {
	Name         string  `json:"name"`
	Boxes        int     `json:"boxes"`
	LowerBound   int     `json:"lowerBound"`
	Utilization  float64 `json:"utilization"`
	WastePercent float64 `json:"wastePercent"`
	RuntimeMs    int64   `json:"runtimeMs"`
	Error        string  `json:"error,omitempty"`
}

func runCompare(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("compare", pflag.ContinueOnError)
	globalFlags(fs)
	inputFlags(fs)
	solverFlags(fs)
	fs.Bool("json", false, "print the comparison as JSON")

	e, err := setup(fs, args, stderr, nil)
	if err != nil {
		return err
	}
	defer e.close()

	base, err := resolveSettings(fs, e.cfg.Solver)
	if err != nil {
		return err
	}
	inst, err := loadInput(fs, e)
	if err != nil {
		return err
	}

	results := engine.CompareScenarios(engine.BuildDefaultScenarios(base), inst, e.logger.Logger, nil)
	rows := make([]scenarioRow, len(results))
	for i, r := range results {
		rows[i] = scenarioRow{Name: r.Scenario.Name}
		if r.Err != nil {
			rows[i].Error = r.Err.Error()
			continue
		}
		rows[i].Boxes = r.BoxesUsed
		rows[i].LowerBound = r.Result.Stats.LowerBound
		rows[i].Utilization = r.Result.Stats.Utilization
		rows[i].WastePercent = r.WastePercent
		rows[i].RuntimeMs = r.Result.Stats.RuntimeMs
	}

	if asJSON, _ := fs.GetBool("json"); asJSON {
		return writeJSON("", stdout, rows)
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tBOXES\tLOWER BOUND\tUTILIZATION\tWASTE\tRUNTIME")
	for _, r := range rows {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", r.Name, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.3f\t%.1f%%\t%dms\n",
			r.Name, r.Boxes, r.LowerBound, r.Utilization, r.WastePercent, r.RuntimeMs)
	}
	return tw.Flush()
}
