// Package main is festctl, the operator CLI of the registration server:
// schema migrations, registration exports and the event catalog.
package main

import (
	"fmt"
	"os"
)

const (
	Version = "0.1.0"
	appName = "festctl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
