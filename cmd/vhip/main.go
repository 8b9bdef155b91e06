package main

import (
	"fmt"
	"os"

	app "github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	vhipApp, err := app.NewApp(app.ResolveBasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing vhip: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	_ = vhipApp.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
