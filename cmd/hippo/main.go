// Package main provides the entry point for the hippo CLI.
package main

import (
	"os"

	"github.com/hippo-mem/hippo/cmd/hippo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
