package commands

import (
	"os"

	"car-scraper/models"
	"car-scraper/services"
	"car-scraper/storage"

	"github.com/spf13/cobra"
)

var parseOpts struct {
	source  string
	price   string
	mileage string
}

func init() {
	parseCmd.Flags().StringVar(&parseOpts.source, "source", "manual", "Source name for the row.")
	parseCmd.Flags().StringVar(&parseOpts.price, "price", "", "Price text, e.g. \"£129,995\".")
	parseCmd.Flags().StringVar(&parseOpts.mileage, "mileage", "", "Mileage text, e.g. \"12,000 miles\".")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <title>",
	Short: "Normalizes a single listing title, price and mileage and prints it as CSV.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listing := services.Normalize(models.RawListing{
			Source:      parseOpts.source,
			TitleText:   args[0],
			PriceText:   parseOpts.price,
			MileageText: parseOpts.mileage,
		})
		return storage.WriteCSV(os.Stdout, []models.NormalizedListing{listing})
	},
}
