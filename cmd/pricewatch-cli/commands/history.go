package commands

import (
	"fmt"
	"pricewatch-backend/lib/serviceutil"
	"pricewatch-backend/services/pricetracker"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <product id>",
	Short: "Shows the daily lowest-price history for a product.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid product id", err)
		}

		db, err := openDatabase()
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer db.Close()

		store := pricetracker.NewStore(db)
		history, err := store.PriceHistory(cmd.Context(), id)
		if err != nil {
			serviceutil.Fatal("failed to query price history", err)
		}

		fmt.Printf("%s (%s)\n", history.Name, history.URL)

		t := newTable()
		t.AppendHeader(table.Row{"Date", "Lowest price", "Shop"})
		for _, point := range history.Points {
			t.AppendRow(table.Row{
				point.Date,
				fmt.Sprintf("%.2f Kč", point.Price),
				point.ShopName,
			})
		}
		t.Render()
	},
}
