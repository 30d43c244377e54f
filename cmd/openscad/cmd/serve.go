package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/utils/stringx"
	"github.com/frikeldon/openscad/internal/preview"
	"github.com/frikeldon/openscad/internal/service"
	"github.com/frikeldon/openscad/internal/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr      string
		watchFile string
		history   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket live preview server",
		Long: `Starts the live preview server. Editors connect to /ws and send

  {"type": "interpret", "id": "1", "payload": {"source": "cube(1);"}}

and receive either a "result" message with the cleaned CSG tree or a
"diagnostic" message with the error span. /health reports server health.

With --watch the given file is re-interpreted on every save and the outcome
is pushed to every connected editor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService(func(c *service.Config) { c.EnableHistory = history })
			if err != nil {
				return err
			}
			defer svc.Close()

			addr = stringx.FirstNonBlank(addr, a.cfg.PreviewAddress())
			srv := preview.New(preview.Config{
				Addr:         addr,
				PingInterval: a.cfg.Preview.PingInterval.Duration,
				RunTimeout:   a.cfg.Preview.RunTimeout.Duration,
			}, svc, a.logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 2)
			go func() { errCh <- srv.Start() }()

			if watchFile != "" {
				w, err := watch.New(watch.Config{
					Path:     watchFile,
					Debounce: a.cfg.Watch.Debounce.Duration,
					Logger:   a.logger,
				}, watch.InterpreterFunc(srv.Broadcast), nil)
				if err != nil {
					return err
				}
				go func() { errCh <- w.Run(ctx) }()
			}

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				a.logger.WarnWithErr("Shutdown failed", err, mdwlog.Fields{"addr": addr})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config preview.host:preview.port)")
	cmd.Flags().StringVar(&watchFile, "watch", "", "push outcomes of this file to every editor on save")
	cmd.Flags().BoolVar(&history, "history", false, "record every run in the history store")
	return cmd
}
