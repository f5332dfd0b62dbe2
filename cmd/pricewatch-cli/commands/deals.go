package commands

import (
	"fmt"
	"pricewatch-backend/lib/serviceutil"
	"pricewatch-backend/services/pricetracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dealsCmd)
}

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Shows the best current deals for every tracked product.",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openDatabase()
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer db.Close()

		store := pricetracker.NewStore(db)
		products, err := store.CurrentDeals(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to query current deals", err)
		}

		for _, product := range products {
			fmt.Printf("[%d] %s\n", product.ID, product.Name)

			t := newTable()
			t.AppendHeader(table.Row{"Shop", "Price", "Amount", "Per unit", "Valid until", "Note"})
			for _, deal := range product.Deals {
				t.AppendRow(table.Row{
					deal.ShopName,
					fmt.Sprintf("%.2f Kč", deal.Price),
					deal.Amount,
					fmt.Sprintf("%.4f", deal.PricePerUnit),
					deal.Expiration,
					deal.Note,
				})
			}
			t.Render()
		}
	},
}
