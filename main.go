package main

import (
	"os"

	"github.com/vzahanych/kma-weather/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
