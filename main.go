package main

import (
	"os"

	"github.com/StacySimmons/logging-hosts/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cmd.Execute(version, commit, date); err != nil {
		os.Exit(cmd.ReportError(os.Stderr, err))
	}
}
