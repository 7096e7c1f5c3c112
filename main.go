package main

import (
	"os"

	"github.com/molscope/molscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
