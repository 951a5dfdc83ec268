package main

import (
	"os"

	"github.com/cryptohub/cryptohub/cmd/cryptohub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
