package commands

import (
	"errors"
	"log/slog"
	"pricewatch-backend/lib/configutil"
	"pricewatch-backend/lib/serviceutil"
	"pricewatch-backend/services/pricetracker"

	"github.com/spf13/cobra"
)

type scrapeConfig struct {
	Urls []string `json:"urls"`
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Runs one fetch cycle over the tracked URLs from config.json5.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[scrapeConfig]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if len(cfg.Urls) == 0 {
			serviceutil.Fatal("no tracked urls", errors.New("config.json5 has an empty urls list"))
		}

		db, err := openDatabase()
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer db.Close()

		slog.Info("running fetch cycle", "urls", len(cfg.Urls))
		scraper := pricetracker.NewScraper(pricetracker.NewStore(db), pricetracker.ScraperOptions{})
		scraper.Run(cmd.Context(), cfg.Urls)
	},
}
