package main

import (
	"os"

	"github.com/jsundin/tcrplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
