// Package main provides the screenforge CLI: generate UI screen schemas
// from an OpenAPI document, preview the results, and inspect merge history.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// configFile is set by the --config flag.
var configFile string

func main() {
	log.SetFlags(0)
	log.SetPrefix("screenforge: ")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "screenforge:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "screenforge",
	Short: "Screenforge generates editable UI screen schemas from an OpenAPI document",
	Long: `Screenforge turns an OpenAPI document into one UI screen schema per API
operation and keeps them regenerable: user edits to labels, grouping and
visibility survive every regeneration via a three-way merge against the
previous baseline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file (default: .screenforge.yaml)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("screenforge v0.2.0")
	},
}
