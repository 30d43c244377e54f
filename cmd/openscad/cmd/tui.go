package cmd

import (
	"context"

	"github.com/spf13/cobra"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/internal/service"
	"github.com/frikeldon/openscad/internal/tui"
	"github.com/frikeldon/openscad/internal/watch"
)

func newTUICmd(a *app) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "tui <file>",
		Short: "Interactive viewer for a source file",
		Long: `Opens a terminal viewer with the source (error spans underlined), the
cleaned CSG tree and the syntax tree of a file.

Navigation:
  Tab/Shift+Tab  - switch views
  r              - reload the file
  ?              - toggle help
  q              - quit

With --follow the file is reloaded automatically on every save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the alternate screen owns the terminal; keep logs quiet
			a.logger = a.logger.WithLevel(mdwlog.LevelError)

			svc, err := a.newService(nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			model := tui.NewModel(args[0], svc, a.cfg.Preview.RunTimeout.Duration)
			if !follow {
				return tui.Run(model, nil)
			}

			updates := make(chan *service.Outcome, 1)
			w, err := watch.New(watch.Config{
				Path:     args[0],
				Debounce: a.cfg.Watch.Debounce.Duration,
				Logger:   a.logger,
			}, svc, func(out *service.Outcome) {
				select {
				case updates <- out:
				default:
				}
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			return tui.Run(model, updates)
		},
	}

	cmd.Flags().BoolVar(&follow, "follow", false, "reload automatically when the file changes")
	return cmd
}
