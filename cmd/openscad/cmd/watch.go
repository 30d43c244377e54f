package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/internal/service"
	"github.com/frikeldon/openscad/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		format  string
		history bool
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-interpret a source on every save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := csg.ParseFormat(format)
			if err != nil {
				return err
			}
			svc, err := a.newService(func(c *service.Config) { c.EnableHistory = history })
			if err != nil {
				return err
			}
			defer svc.Close()

			w, err := watch.New(watch.Config{
				Path:     args[0],
				Debounce: a.cfg.Watch.Debounce.Duration,
				Logger:   a.logger,
			}, svc, func(out *service.Outcome) {
				printOutcome(cmd, out, f)
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tree", "output format: json, yaml or tree")
	cmd.Flags().BoolVar(&history, "history", false, "record every run in the history store")
	return cmd
}

// printOutcome writes a separator line followed by the tree or the error
func printOutcome(cmd *cobra.Command, out *service.Outcome, f csg.Format) {
	fmt.Fprintf(cmd.OutOrStdout(), "-- %s %s\n", time.Now().Format("15:04:05"), out.Name)
	if out.Failed() {
		reportFailure(cmd.OutOrStdout(), out.Source, out.Err)
		return
	}
	if err := csg.Encode(cmd.OutOrStdout(), out.Result.Objects, f); err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
}
