package commands

import (
	"fmt"
	"os"

	"car-scraper/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sitesCmd)
}

var sitesCmd = &cobra.Command{
	Use:   "sites <sites.yaml>",
	Short: "Validates a site config file and lists its sites.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, err := config.LoadSites(args[0])
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Source", "Enabled", "Max pages", "Container", "URL"})
		for _, s := range sites {
			t.AppendRow(table.Row{s.Source, s.IsEnabled(), s.MaxPages, s.Container, s.PageURL(1)})
		}
		t.Render()

		fmt.Printf("%d sites, %d enabled\n", len(sites), len(config.EnabledSites(sites)))
		return nil
	},
}
