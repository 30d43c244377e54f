package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/frikeldon/openscad/pkg/core/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "openscad v%s\n", version.Toolkit)
			fmt.Fprintf(out, "  Language:   %s\n", version.ComponentVersion("language"))
			fmt.Fprintf(out, "  Preview:    %s\n", version.ComponentVersion("preview"))
			fmt.Fprintf(out, "  Store:      %s\n", version.ComponentVersion("store"))
			fmt.Fprintf(out, "  Git Commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  Build Date: %s\n", version.BuildDate)
			fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
