package main

import (
	"os"

	"shipflow/cmd/shipflow/command"
)

func main() {
	if err := command.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
