package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skytonelabs/skytone/pkg/cli"
	"github.com/skytonelabs/skytone/pkg/tour"
)

var tourCmd = &cobra.Command{
	Use:   "tour",
	Short: "Manage the scripted tour state",
	Long: `Inspect and reset the persisted "tour previously shown" flag.

The flyover auto-plays its scripted tour the first time a client runs;
resetting the flag re-arms it.`,
}

var tourStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the tour has been shown",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		visited := tour.NewVisitedStore(store)
		rec, ok := visited.Record()
		if !ok {
			fmt.Println("Tour not yet shown; it will auto-play on the next flight.")
			return nil
		}
		how := "completed"
		if rec.Skipped {
			how = "skipped"
		}
		fmt.Printf("Tour %s at %s (%d waypoints)\n",
			how, rec.CompletedAt.Local().Format("2006-01-02 15:04:05"), rec.Waypoints)
		return nil
	},
}

var tourResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Re-arm the first-visit tour",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := tour.NewVisitedStore(store).Clear(); err != nil {
			return fmt.Errorf("clear visited flag: %w", err)
		}
		cli.PrintSuccess("Tour re-armed; it will auto-play on the next flight")
		return nil
	},
}

func init() {
	tourCmd.AddCommand(tourStatusCmd)
	tourCmd.AddCommand(tourResetCmd)
}
