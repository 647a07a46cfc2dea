// Package main is the entry point for wifibeat.
package main

import (
	"fmt"
	"os"

	"github.com/skyseer/wifibeat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
