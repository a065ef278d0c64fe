package main

import (
	"os"

	"github.com/TheusHen/DHX/cmd/dhx/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
