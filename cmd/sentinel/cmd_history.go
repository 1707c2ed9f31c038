package main

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored signal history",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 30, "Number of most recent records to print (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records := newStore(cfg).Load()
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[len(records)-historyLimit:]
	}
	renderHistory(cmd.OutOrStdout(), records)
	return nil
}
