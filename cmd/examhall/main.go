package main

import (
	"os"

	"github.com/mind-engage/examhall/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
