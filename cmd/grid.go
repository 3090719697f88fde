package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vzahanych/kma-weather/internal/grid"
)

func newGridCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Convert a latitude/longitude to a KMA grid cell",
		Example: `  kma-weather grid --lat 37.5665 --lon 126.9780`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := grid.NewCoordinate(lat, lon)
			if err != nil {
				return err
			}

			where := "outside Korea"
			if coord.IsInKorea() {
				where = "in Korea"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> nx=%d ny=%d (%s)\n", coord, coord.Grid().NX, coord.Grid().NY, where)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in decimal degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in decimal degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}
