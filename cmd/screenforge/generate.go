// Generate command: one full generation pass.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/screenforge/screenforge/internal/history"
	"github.com/screenforge/screenforge/internal/pipeline"
)

var (
	generateSpec    string
	generateOutput  string
	generateProject string
	generateNoAudit bool
)

func init() {
	generateCmd.Flags().StringVar(&generateSpec, "spec", "", "OpenAPI document path (JSON or YAML)")
	generateCmd.Flags().StringVar(&generateOutput, "output", "", "output directory for screen snapshots")
	generateCmd.Flags().StringVar(&generateProject, "project", "", "directory containing screenforge.cue")
	generateCmd.Flags().BoolVar(&generateNoAudit, "no-history", false, "skip recording merge decisions in the history database")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate screen schemas and reconcile them with user edits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			SpecPath:   override(generateSpec, settings.GetString(cfgKeySpec)),
			OutputDir:  override(generateOutput, settings.GetString(cfgKeyOutput)),
			ProjectDir: override(generateProject, settings.GetString(cfgKeyProjectDir)),
		}

		if !generateNoAudit {
			store, err := history.OpenSQLite(cmd.Context(), settings.GetString(cfgKeyHistoryDB))
			if err != nil {
				return err
			}
			defer store.Close()
			opts.History = store
		}

		summary, err := pipeline.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		log.Printf("generated %d screens from %s (document version %s)",
			len(summary.Results), opts.SpecPath, summary.DocumentVersion)
		for _, r := range summary.Results {
			for _, d := range r.Decisions {
				log.Printf("  %s: %s", r.OperationID, d)
			}
		}
		if len(summary.Pruned) > 0 {
			log.Printf("pruned %d orphaned snapshots: %v", len(summary.Pruned), summary.Pruned)
		}
		for _, s := range summary.Skipped {
			log.Printf("skipped invalid operation %s", s)
		}
		if n := summary.Decisions(); n > 0 {
			fmt.Printf("%d merge decisions recorded\n", n)
		}
		return nil
	},
}

func override(flag, setting string) string {
	if flag != "" {
		return flag
	}
	return setting
}
