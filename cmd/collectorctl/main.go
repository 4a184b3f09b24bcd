package main

import (
	"fmt"
	"os"
)

const (
	Version = "0.1.0"
	appName = "collectorctl"
)

func main() {
	err := rootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
