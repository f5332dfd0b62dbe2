package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	configsqlite "pricewatch-backend/lib/configutil/sqlite"
	pricetrackerdb "pricewatch-backend/services/pricetracker/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pricewatch-cli",
	Short: "pricewatch-cli inspects the price database and runs one-off fetch cycles.",
}

var dbPath *string

func init() {
	dbPath = rootCmd.PersistentFlags().String("db", "price_tracker.db", "The price database to operate on.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() (*sql.DB, error) {
	return configsqlite.Struct{File: *dbPath}.OpenDB(pricetrackerdb.Schema)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
