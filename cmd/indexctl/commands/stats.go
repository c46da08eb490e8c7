package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Сводка по состоянию поискового индекса",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serviceAddr)

			res, err := client.stats()
			if err != nil {
				return err
			}

			fmt.Printf("total indexed:        %d\n", res.TotalIndexed)
			fmt.Printf("vector index healthy: %t\n", res.VectorIndexHealthy)
			fmt.Printf("vector count:         %d\n", res.VectorCount)
			fmt.Printf("metadata rows:        %d\n", res.MetadataRows)
			if res.LastIndexedAt != "" {
				fmt.Printf("last indexed at:      %s\n", res.LastIndexedAt)
			}

			return nil
		},
	}
}
