package main

import (
	"io"
	"math/rand"

	"github.com/spf13/pflag"

	"github.com/piwi3910/BoxPack/internal/importer"
	"github.com/piwi3910/BoxPack/internal/model"
)

func runGenerate(args []string, stdout, stderr io.Writer) error {
	d := model.DefaultGeneratorConfig()
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	globalFlags(fs)
	fs.Int("l", d.L, "box side length")
	fs.IntP("num", "n", d.NumRect, "number of rectangles")
	fs.Int("min-w", d.MinW, "minimum width")
	fs.Int("max-w", d.MaxW, "maximum width")
	fs.Int("min-h", d.MinH, "minimum height")
	fs.Int("max-h", d.MaxH, "maximum height")
	fs.Int64("seed", 1, "random seed")
	fs.String("id", "", "instance id (default: random)")
	fs.StringP("output", "o", "", "write the instance here instead of stdout")

	e, err := setup(fs, args, stderr, map[string]string{
		"generator.l":        "l",
		"generator.num_rect": "num",
		"generator.min_w":    "min-w",
		"generator.max_w":    "max-w",
		"generator.min_h":    "min-h",
		"generator.max_h":    "max-h",
	})
	if err != nil {
		return err
	}
	defer e.close()

	seed, _ := fs.GetInt64("seed")
	inst, err := model.GenerateInstance(e.cfg.Generator, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	if id, _ := fs.GetString("id"); id != "" {
		inst.ID = id
	}
	e.logger.Info("generated instance",
		"id", inst.ID,
		"rectangles", len(inst.Rectangles),
		"l", inst.L,
		"lower_bound", inst.LowerBound())

	out, _ := fs.GetString("output")
	if out == "" {
		return writeJSON("", stdout, inst)
	}
	return importer.SaveInstance(out, inst)
}
