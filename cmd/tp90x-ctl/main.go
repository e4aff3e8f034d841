// Tp90x-ctl is a control utility for ThermoPro TP902 and TP904 wireless
// BBQ thermometers.
//
// It talks to the thermometer over BLE: scanning, live temperature
// monitoring, alarm configuration, and device settings. No cloud account
// or vendor app is required.
//
// Usage:
//
//	tp90x-ctl [command] [flags]
//
// See 'tp90x-ctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tp90x/internal/logging"
	"github.com/muurk/tp90x/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tp90x-ctl",
	Short: "ThermoPro TP90x Thermometer Control Utility",
	Long: `A standalone utility for ThermoPro TP902 and TP904 wireless thermometers.

Provides BLE discovery, live temperature monitoring, alarm configuration,
and device settings over the thermometer's native protocol.

Set TP90X_LOG_LEVEL=debug to see frame-level protocol traffic.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tp90x-ctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
