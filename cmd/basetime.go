package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/kma-weather/internal/basetime"
)

func newBaseTimeCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "basetime",
		Short: "Show the issuance each KMA product would be requested for",
		Example: `  kma-weather basetime
  kma-weather basetime --at 2025-03-15T09:35:00+09:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
				now = t
			}
			now = now.In(basetime.KST)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "now (KST): %s\n", now.Format("2006-01-02 15:04"))
			for _, kind := range []basetime.Kind{
				basetime.UltraShortNowcast,
				basetime.UltraShortForecast,
				basetime.ShortTermForecast,
			} {
				bt, err := basetime.Resolve(kind, now)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-22s %s\n", kind, bt)
			}
			fmt.Fprintf(out, "%-22s %s\n", "city-nowcast", basetime.CityNowcast(now))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate at this RFC3339 time instead of now")

	return cmd
}
