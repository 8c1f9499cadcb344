package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skytonelabs/skytone/pkg/cli"
	"github.com/skytonelabs/skytone/pkg/flyover"
	"github.com/skytonelabs/skytone/pkg/kv"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	cityFile    string
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skytone",
	Short: "Position-driven adaptive soundtrack for city flyovers",
	Long: `skytone - adaptive generative music driven by a 3D camera position.

The pipeline converts a camera position over a city model into district
influence weights, blends each district's prompt accordingly, and streams
the resulting soundtrack from a realtime music backend.

Configuration is stored in ~/.skytone/ and supports multiple contexts,
similar to kubectl's context management.

Examples:
  # Set up a context with your backend API key
  skytone config add-context main --api-key YOUR_API_KEY
  skytone config use-context main

  # Fly the demo city for a minute, writing raw PCM
  skytone fly --duration 1m -o soundtrack.pcm

  # Preview district weights at a position
  skytone districts --at 35.6595,139.7005
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.skytone/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVar(&cityFile, "city", "", "city config file (default: context city or embedded demo)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(flyCmd)
	rootCmd.AddCommand(districtsCmd)
	rootCmd.AddCommand(tourCmd)
}

func initConfig() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the selected context, or nil when none is
// configured. Most commands work without one; connecting to the backend
// needs the API key it carries (or a flag/env override).
func getContext() *cli.Context {
	cfg := getConfig()
	if cfg == nil {
		return nil
	}
	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		return nil
	}
	return ctx
}

// loadCity resolves the city config: --city flag, then the context's
// city path, then the embedded demo city.
func loadCity() (flyover.Config, error) {
	path := cityFile
	if path == "" {
		if ctx := getContext(); ctx != nil {
			path = ctx.City
		}
	}
	if path == "" {
		return flyover.DefaultConfig(), nil
	}
	return flyover.LoadConfig(path)
}

// openStore opens the durable client store under ~/.skytone/data.
func openStore() (kv.Store, error) {
	paths, err := cli.NewPaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDataDir(); err != nil {
		return nil, err
	}
	return kv.NewBadger(kv.BadgerOptions{Dir: paths.DataPath("client")})
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
