package main

import (
	"os"

	"github.com/mbertelsen/citypulse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
