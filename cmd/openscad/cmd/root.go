package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/scad"
	"github.com/frikeldon/openscad/internal/service"
	"github.com/frikeldon/openscad/pkg/core/config"
	"github.com/frikeldon/openscad/pkg/core/logging"
)

// errReported marks failures whose message was already written
var errReported = errors.New("reported")

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

// app holds the state shared by all commands of one invocation
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *mdwlog.Logger
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "openscad",
		Short: "OpenSCAD language toolkit",
		Long: `Interprets sources of a small OpenSCAD-like geometry language and
produces the CSG tree they describe.

Commands:
  run      - interpret a file and print its CSG tree
  tokens   - print the token stream of a file
  ast      - print the syntax tree of a file
  watch    - re-interpret a file on every save
  serve    - start the websocket live preview server
  history  - inspect recorded runs
  tui      - interactive viewer`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $OPENSCAD_CONFIG or ./configs/openscad.toml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newRunCmd(a),
		newTokensCmd(a),
		newASTCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
		newTUICmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line
func Execute() error {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error:")+" "+err.Error())
}

// setup loads the configuration and creates the logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.Load(a.cfgFile)
	} else {
		a.cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.LoggerConfig{
		ServiceName: a.cfg.General.Name,
		Level:       a.cfg.General.LogLevel,
		Format:      a.cfg.General.LogFormat,
		Output:      cmd.ErrOrStderr(),
	}
	if a.verbose {
		logCfg.Level = "debug"
	}
	a.logger, err = logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

// newService creates a service from the loaded configuration
func (a *app) newService(adjust func(*service.Config)) (*service.Service, error) {
	cfg := service.FromAppConfig(a.cfg)
	if adjust != nil {
		adjust(&cfg)
	}
	return service.New(cfg, a.logger)
}

// readSource reads a file, or stdin for "-"
func readSource(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	return string(data), nil
}

// reportFailure renders a language error with its source excerpt
func reportFailure(w io.Writer, source string, err error) error {
	rendered := scad.RenderError(source, err)
	header := fmt.Sprintf("error[%s]:", scad.Diagnose(err).Code)
	if strings.HasPrefix(rendered, header) {
		rendered = errorStyle.Render(header) + strings.TrimPrefix(rendered, header)
	}
	fmt.Fprint(w, rendered)
	return errReported
}
