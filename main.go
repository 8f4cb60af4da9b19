// Command checklints audits a project against declarative checklists.
package main

import (
	"os"

	"github.com/adam-gaia/checklints/cmd"
	buildinfo "github.com/adam-gaia/checklints/internal/version"
)

// Populated by -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
	os.Exit(cmd.Execute())
}
