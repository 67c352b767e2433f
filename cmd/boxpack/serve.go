package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/piwi3910/BoxPack/internal/api"
	"github.com/piwi3910/BoxPack/internal/metrics"
)

func runServe(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	globalFlags(fs)
	fs.String("addr", "", "listen address (default :8080)")
	fs.Int("max-rectangles", 0, "reject instances with more rectangles")

	e, err := setup(fs, args, stderr, map[string]string{
		"server.addr":           "addr",
		"server.max_rectangles": "max-rectangles",
	})
	if err != nil {
		return err
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(e.cfg, e.logger.Logger, metrics.NewMetrics(service))
	return srv.Start(ctx)
}
