// Package main is the entry point for feiramap.
package main

import (
	"os"

	"github.com/feiramap/feiramap/cmd/feiramap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
