package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/resy-notifier/internal/payload"
)

var (
	checkFile string

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate a query file and print the expanded payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := payload.LoadQueryFile(checkFile)
			if err != nil {
				return err
			}

			payloads, err := payload.NewBuilder(zap.NewNop()).Build(entries)
			if err != nil {
				return err
			}

			for _, p := range payloads {
				fmt.Printf("%s  %s  seats=%d  window=[%02d:00,%02d:00)  recipients=%d\n",
					p.Date.Format("2006-01-02"), p.Restaurant, p.Seats, p.MinHour, p.MaxHour, len(p.Recipients))
			}
			fmt.Printf(">> %d payloads from %d entries\n", len(payloads), len(entries))
			return nil
		},
	}
)

func init() {
	checkCmd.Flags().StringVar(&checkFile, "file", "query.json", "path to query file")
}
