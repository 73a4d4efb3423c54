package main

import (
	"os"

	"github.com/ombralis/packdispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
