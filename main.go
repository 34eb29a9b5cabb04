package main

import (
	"os"

	"github.com/codalotl/draftpatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
