package main

import (
	"os"

	"github.com/graph-to-compose/composer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
