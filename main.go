// Package main is the entry point for pktinspect, a live network traffic inspector.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/pktinspect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
