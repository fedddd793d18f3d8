// Preview command: serve generated artifacts over HTTP with live reload.
package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/screenforge/screenforge/internal/history"
	"github.com/screenforge/screenforge/internal/pipeline"
	"github.com/screenforge/screenforge/internal/preview"
	"github.com/screenforge/screenforge/internal/snapshot"
)

var (
	previewAddr  string
	previewWatch bool
)

func init() {
	previewCmd.Flags().StringVar(&previewAddr, "addr", "", "listen address (default :8637)")
	previewCmd.Flags().BoolVar(&previewWatch, "watch", false, "regenerate when the OpenAPI document changes")
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve generated screens, routes and merge history over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		store := snapshot.NewStore(settings.GetString(cfgKeyOutput))
		hist, err := history.OpenSQLite(cmd.Context(), settings.GetString(cfgKeyHistoryDB))
		if err != nil {
			return err
		}
		defer hist.Close()

		bus := preview.NewBus()
		if previewWatch {
			watcher := preview.NewWatcher(pipeline.Options{
				SpecPath:   settings.GetString(cfgKeySpec),
				OutputDir:  settings.GetString(cfgKeyOutput),
				ProjectDir: settings.GetString(cfgKeyProjectDir),
				History:    hist,
			}, bus, 2*time.Second)
			go watcher.Start(cmd.Context())
		}

		srv := preview.NewServer(store, hist, bus)
		return srv.Run(cmd.Context(), override(previewAddr, settings.GetString(cfgKeyPreviewAddr)))
	},
}
