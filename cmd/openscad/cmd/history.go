package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/utils/stringx"
	"github.com/frikeldon/openscad/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	openStore := func() (*store.SQLiteHistoryStore, error) {
		return store.NewSQLiteHistoryStore(store.SQLiteConfig{Path: a.cfg.Store.Path, Logger: a.logger})
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `Lists runs recorded with --history, newest first.

Examples:
  openscad history --limit 5
  openscad history show <id>
  openscad history stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.List(context.Background(), limit, offset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-8s  %-19s  %-6s  %7s  %9s  %s\n", "ID", "CREATED", "STATUS", "OBJECTS", "STEPS", "NAME")
			for _, run := range runs {
				fmt.Fprintf(out, "%-8s  %-19s  %-6s  %7d  %9d  %s\n",
					stringx.Truncate(run.ID, 8, ""),
					run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					run.Status,
					run.Objects,
					run.Steps,
					run.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the CSG tree or error of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s) %s\n\n", run.ID, run.Name, run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if run.Status == store.StatusError && run.Diagnostic != nil {
				d := run.Diagnostic
				if d.HasSpan() {
					fmt.Fprintf(out, "error[%s]: %s at line %d, column %d\n", d.Code, d.DisplayMessage, d.StartLine, d.StartColumn)
				} else {
					fmt.Fprintf(out, "error[%s]: %s\n", d.Code, d.DisplayMessage)
				}
				return nil
			}

			nodes, err := csg.Decode(run.CSG)
			if err != nil {
				return fmt.Errorf("failed to decode stored CSG: %w", err)
			}
			return csg.Print(out, nodes)
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show history statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.Statistics(context.Background())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stats))
			for k := range stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", stringx.PadRight(k+":", 18, ' '), stats[k])
			}
			return nil
		},
	}

	cmd.AddCommand(showCmd, statsCmd)
	return cmd
}
