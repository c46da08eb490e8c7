package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newReindexCmd() *cobra.Command {
	var shopID string

	cmd := &cobra.Command{
		Use:   "reindex <product-id>...",
		Short: "Переиндексация товаров по текущему состоянию каталога",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serviceAddr)

			var failed int
			for _, arg := range args {
				productID, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid product id %q", arg)
				}

				res, err := client.reindex(reindexRequest{ProductID: productID, ShopID: shopID})
				if err != nil {
					failed++
					fmt.Printf("product %d: error: %v\n", productID, err)
					continue
				}

				if res.Skipped {
					fmt.Printf("product %d: skipped (%s)\n", res.ProductID, res.Reason)
					continue
				}

				fmt.Printf("product %d: indexed in %dms\n", res.ProductID, res.DurationMs)
			}

			if failed > 0 {
				return fmt.Errorf("%d product(s) failed to reindex", failed)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "магазин, в контексте которого запрашивается товар")

	return cmd
}
