// History command: inspect recorded merge decisions.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/screenforge/screenforge/internal/history"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")
}

var historyCmd = &cobra.Command{
	Use:   "history [operationId]",
	Short: "Show recorded merge decisions, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		store, err := history.OpenSQLite(cmd.Context(), settings.GetString(cfgKeyHistoryDB))
		if err != nil {
			return err
		}
		defer store.Close()

		var runs []history.Run
		if len(args) == 1 {
			runs, err = store.ByOperation(cmd.Context(), args[0], historyLimit)
		} else {
			runs, err = store.Recent(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no merge runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  (document %s)\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.OperationID, r.DocumentVersion)
			for _, d := range r.Decisions {
				fmt.Printf("    %s\n", d)
			}
		}
		return nil
	},
}
