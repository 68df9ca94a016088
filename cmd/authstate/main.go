package main

import (
	"os"

	"github.com/MrEthical07/authstate/cmd/authstate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
