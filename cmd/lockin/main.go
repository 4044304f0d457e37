package main

import (
	"os"

	"github.com/rustyeddy/lockin/cmd/lockin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
