// Package main provides the skytone CLI tool.
//
// Usage:
//
//	skytone [flags] <command> [args]
//
// Commands:
//
//	fly        - Run a headless flyover and stream the soundtrack
//	districts  - Inspect the city registry and district weights
//	tour       - Manage the scripted tour state
//	config     - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.skytone/
//	Use 'skytone config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/skytonelabs/skytone/cmd/skytone/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
