package main

import (
	"fmt"
	"os"

	"evalengine/cmd/evalengine/command"
)

func main() {
	if err := command.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
