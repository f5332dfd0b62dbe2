package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"pricewatch-backend/lib/chrono"
	"pricewatch-backend/lib/configutil"
	configsqlite "pricewatch-backend/lib/configutil/sqlite"
	"pricewatch-backend/lib/serviceutil"
	"pricewatch-backend/lib/telemetry"
	"pricewatch-backend/services/pricetracker"
	pricetrackerdb "pricewatch-backend/services/pricetracker/db"
	"pricewatch-backend/services/pricetracker/server"
)

type Config struct {
	Database configsqlite.Struct `json:"database"`
	// tracked product page URLs, processed in list order
	Urls []string `json:"urls"`
	// cron spec for the fetch cycle
	Schedule string `json:"schedule"`
	Port     int    `json:"port"`
	Verbose  bool   `json:"verbose"`
	// optional new-low alert emails
	Alerts *pricetracker.AlertConfig `json:"alerts"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Schedule == "" {
		config.Schedule = "@every 48h"
	}
	if config.Port == 0 {
		config.Port = 8470
	}

	telemetry.InitSlog(config.Verbose)

	db, err := config.Database.OpenDB(pricetrackerdb.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	err = telemetry.SetupFromEnv(ctx, "pricewatchd")
	if os.IsNotExist(err) {
		slog.Warn("no telemetry.json5 found, telemetry disabled")
	} else if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	store := pricetracker.NewStore(db)
	var alerter *pricetracker.Alerter
	if config.Alerts != nil {
		alerter = pricetracker.NewAlerter(*config.Alerts)
	}
	scraper := pricetracker.NewScraper(store, pricetracker.ScraperOptions{
		Alerter: alerter,
	})

	// one cycle at boot so a fresh database has data before the first
	// scheduled run fires
	go scraper.Run(ctx, config.Urls)

	trigger := chrono.NewCronTrigger()
	err = trigger.Schedule(config.Schedule, func() {
		scraper.Run(ctx, config.Urls)
	})
	if err != nil {
		serviceutil.Fatal("failed to schedule fetch cycle", err)
	}
	trigger.Start()

	mux := http.NewServeMux()
	server.NewService(store).Register(mux)
	go serviceutil.StartHttpServer(config.Port, mux)

	<-ctx.Done()
	<-trigger.Stop().Done()
}
