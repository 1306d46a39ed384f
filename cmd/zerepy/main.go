package main

import (
	"fmt"
	"os"

	"github.com/tillberg/autorestart"

	"github.com/blorm-network/zerepy/internal/cli"
)

func main() {
	go autorestart.RestartOnChange()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zerepy: %v\n", err)
		os.Exit(1)
	}
}
