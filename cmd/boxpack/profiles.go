package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/piwi3910/BoxPack/internal/project"
)

func runProfiles(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("profiles", pflag.ContinueOnError)
	globalFlags(fs)
	fs.String("profiles-file", project.DefaultProfilesPath(), "custom profiles file")

	e, err := setup(fs, args, stderr, nil)
	if err != nil {
		return err
	}
	defer e.close()

	path, _ := fs.GetString("profiles-file")
	custom, err := project.LoadCustomProfiles(path)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tALGORITHM\tPLACEMENT\tDESCRIPTION")
	list := append(project.BuiltInProfiles(e.cfg.Solver), custom...)
	for _, p := range list {
		source := "custom"
		if p.BuiltIn {
			source = "built-in"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, source, p.Settings.Algorithm, p.Settings.Placement, p.Description)
	}
	return tw.Flush()
}
