package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/resy-notifier/internal/config"
	"github.com/example/resy-notifier/internal/store"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect the notification ledger",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all ledger records",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openLedger()
		if err != nil {
			return err
		}

		recs, err := st.List()
		if err != nil {
			return err
		}

		for _, r := range recs {
			fmt.Printf("%s  %s %s %s  seats=%d  to=%s\n",
				r.Notified, r.Restaurant, r.Date, r.ReservationTime, r.Seats, r.Number)
		}
		fmt.Printf(">> %d records\n", len(recs))
		return nil
	},
}

var (
	pruneOlderThan time.Duration

	recordsPruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Delete records older than a cutoff (the watcher itself never prunes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openLedger()
			if err != nil {
				return err
			}

			n, err := st.Prune(pruneOlderThan)
			if err != nil {
				return err
			}
			fmt.Printf(">> pruned %d records\n", n)
			return nil
		},
	}
)

func openLedger() (*store.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store.New(cfg.Store.Dir, "")
}

func init() {
	recordsPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "age cutoff, e.g. 720h")
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsPruneCmd)
}
