package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/scad/ast"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/internal/service"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		format  string
		raw     bool
		history bool
	)

	cmd := &cobra.Command{
		Use:   "run <file|->",
		Short: "Interpret a source and print its CSG tree",
		Long: `Interprets a source file ("-" reads stdin) and prints the cleaned CSG
tree. echo() output goes to stderr.

Examples:
  openscad run model.scad
  openscad run --format yaml model.scad
  echo 'cube(2);' | openscad run -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := csg.ParseFormat(format)
			if err != nil {
				return err
			}
			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			svc, err := a.newService(func(c *service.Config) {
				c.Echo = cmd.ErrOrStderr()
				c.SkipClean = raw
				c.EnableHistory = history
			})
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := svc.Interpret(ctx, args[0], source)
			if out.Failed() {
				return reportFailure(cmd.ErrOrStderr(), source, out.Err)
			}
			if out.HistoryID != "" {
				a.logger.Debug("Run recorded", mdwlog.Fields{"id": out.HistoryID})
			}
			return csg.Encode(cmd.OutOrStdout(), out.Result.Objects, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or tree")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw tree without cleanup")
	cmd.Flags().BoolVar(&history, "history", false, "record the run in the history store")
	return cmd
}

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file|->",
		Short: "Print the token stream of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := a.newService(nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			tokens, err := svc.Tokens(source)
			for _, tok := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), tok.String())
			}
			if err != nil {
				return reportFailure(cmd.ErrOrStderr(), source, err)
			}
			return nil
		},
	}
}

func newASTCmd(a *app) *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "ast <file|->",
		Short: "Print the syntax tree of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := a.newService(nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			program, err := svc.Parse(source)
			if err != nil {
				return reportFailure(cmd.ErrOrStderr(), source, err)
			}
			if stats {
				printASTStats(cmd.OutOrStdout(), program)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), ast.Dump(program))
			return nil
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "print node and call counts instead of the tree")
	return cmd
}

// printASTStats writes the node count and how often each module and
// function is called
func printASTStats(w io.Writer, program *ast.Program) {
	calls := map[string]int{}
	ast.Inspect(program, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.ModuleCall:
			calls[n.Name]++
		case *ast.FunctionCall:
			calls[n.Name+"()"]++
		}
		return true
	})

	names := make([]string, 0, len(calls))
	for name := range calls {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "nodes: %d\n", ast.Count(program))
	fmt.Fprint(w, "calls:")
	for _, name := range names {
		fmt.Fprintf(w, " %s=%d", name, calls[name])
	}
	fmt.Fprintln(w)
}
