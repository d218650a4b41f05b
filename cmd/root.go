package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ripsim",
	Short: "RIPv1 distance-vector simulation over loopback UDP",
	Long: `ripsim runs a set of virtual routers in one process. Each router binds its own loopback port,
owns a synthetic IP, and exchanges RIPv1-style routing tables with its neighbours.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "simulation config (yaml), defaults are used when empty")
}
