package main

import (
	"os"

	"github.com/frikeldon/openscad/cmd/openscad/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
