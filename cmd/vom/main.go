package main

import (
	"os"
)

// main is the entry point for the VOM system.
func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
