// yaff runs chain plans described in YAML.
//
// Usage:
//
//	yaff [--json] run <plan.yaml> [--timeout 30s] [--metrics]
//	yaff steps
//
// LOG_LEVEL and LOG_FORMAT are read from the environment or a .env file.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set through ldflags.
var version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "yaff",
		Short:         "yaff runs asynchronous chains described in YAML",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newRunCmd(&jsonOutput),
		newStepsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
