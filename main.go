// Command gochap splits a file into chunks and encrypts them with rotating ciphers.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/gochap/internal/commands"
	"github.com/idelchi/gochap/internal/config"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

func main() {
	cfg := &config.Config{}

	root := commands.NewRootCommand(cfg, version)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
