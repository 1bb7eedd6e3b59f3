package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/eshaffer321/ledger-reconcile/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Execute(version, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrUnbalanced) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
