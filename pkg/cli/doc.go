// Package cli provides the shared plumbing for the skytone command-line
// tool.
//
// This package includes:
//   - Configuration management (contexts with API keys and endpoints)
//   - Output formatting (YAML, JSON, raw)
//   - Terminal styling helpers (lipgloss)
//
// Configuration is stored in ~/.skytone/, supporting multiple contexts
// similar to kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//
//	ctx, err := cfg.GetCurrentContext()
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
