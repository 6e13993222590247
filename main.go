package main

import (
	"os"

	"github.com/ulilazmi100/micro-skill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
