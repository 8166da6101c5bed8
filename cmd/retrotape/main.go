package main

import (
	"os"

	"github.com/ironsheep/retrotape-tracker/cmd/retrotape/commands"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	commands.SetVersion(Version, BuildTime, GitCommit)
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
