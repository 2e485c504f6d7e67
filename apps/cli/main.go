package main

import "github.com/imhmg/purl/apps/cli/cmd"

// Set at build time through -ldflags.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
