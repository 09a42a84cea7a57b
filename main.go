package main

import (
	"os"

	"github.com/verbump/verbump/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
