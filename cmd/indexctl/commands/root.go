package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var serviceAddr string

var rootCmd = &cobra.Command{
	Use:   "indexctl",
	Short: "Операционная утилита поискового индекса визуального поиска",
	Long: `indexctl управляет поисковым индексом через HTTP API работающего сервиса:
батчевая индексация каталога, переиндексация отдельных товаров и сводка по индексу.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultAddr := os.Getenv("VISUAL_SEARCH_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVar(&serviceAddr, "addr", defaultAddr, "адрес сервиса визуального поиска")

	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newReindexCmd())
	rootCmd.AddCommand(newStatsCmd())
}
