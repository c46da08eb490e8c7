package commands

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var (
		source   string
		shopID   string
		limit    int
		offset   int
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Батчевая индексация товаров постранично",
		Long: `batch прогоняет батчевую индексацию страница за страницей, пока источник
не будет исчерпан. Ошибки отдельных товаров не останавливают прогон, итог
печатается в конце.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serviceAddr)

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("indexing"),
				progressbar.OptionShowCount(),
				progressbar.OptionSpinnerType(14),
			)

			var (
				totalIndexed int
				totalFailed  int
				itemErrors   []batchItemError
			)

			for page := 0; maxPages == 0 || page < maxPages; page++ {
				res, err := client.batchIndex(batchIndexRequest{
					Source: source,
					Limit:  limit,
					Offset: offset,
					ShopID: shopID,
				})
				if err != nil {
					return err
				}

				totalIndexed += res.Indexed
				totalFailed += res.Failed
				itemErrors = append(itemErrors, res.Errors...)
				_ = bar.Add(res.Total)

				if res.Total < limit {
					break
				}
				offset += res.Total
			}

			_ = bar.Finish()
			fmt.Printf("\nindexed: %d, failed: %d\n", totalIndexed, totalFailed)
			for _, itemErr := range itemErrors {
				fmt.Printf("  product %d: %s\n", itemErr.ProductID, itemErr.Error)
			}

			if totalFailed > 0 {
				return fmt.Errorf("%d product(s) failed to index", totalFailed)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "catalog", "источник кандидатов: catalog или store")
	cmd.Flags().StringVar(&shopID, "shop", "", "ограничить прогон одним магазином")
	cmd.Flags().IntVar(&limit, "limit", 50, "размер страницы")
	cmd.Flags().IntVar(&offset, "offset", 0, "начальное смещение")
	cmd.Flags().IntVar(&maxPages, "pages", 0, "максимум страниц, 0 — до исчерпания источника")

	return cmd
}
