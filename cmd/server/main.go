package main

import (
	"os"

	"github.com/andres10976/ssl-toolbox/backend/internal/cli"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	os.Exit(cli.Execute(Version))
}
