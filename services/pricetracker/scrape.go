package pricetracker

import (
	"context"
	"log/slog"
	"pricewatch-backend/lib/pricetext"
	"pricewatch-backend/lib/timezone"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

type ScraperOptions struct {
	// defaults to NewFetchClient()
	Client *resty.Client
	// defaults to one request per second
	Limiter *rate.Limiter
	// nil disables new-low alert emails
	Alerter *Alerter
}

// Scraper runs the fetch -> extract -> normalize -> persist pipeline
// over the tracked URL list.
type Scraper struct {
	store   Store
	client  *resty.Client
	limiter *rate.Limiter
	alerter *Alerter
}

func NewScraper(store Store, opts ScraperOptions) Scraper {
	if opts.Client == nil {
		opts.Client = NewFetchClient()
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	return Scraper{
		store:   store,
		client:  opts.Client,
		limiter: opts.Limiter,
		alerter: opts.Alerter,
	}
}

// Run executes one fetch cycle: every URL in list order, one shared
// timestamp for everything written during the pass. A failure on one
// URL is logged and the cycle moves on; snapshots already committed for
// earlier URLs stay committed. Run never panics past its boundary and
// is safe to invoke again on a schedule.
func (s Scraper) Run(ctx context.Context, urls []string) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	cycleId, err := random.String(8)
	if err != nil {
		cycleId = "unknown"
	}
	span.SetAttributes(attribute.String("cycle", cycleId))
	log := slog.With("cycle", cycleId)

	fetchedAt := timezone.Now()
	log.InfoContext(ctx, "starting fetch cycle", "urls", len(urls))

	for _, url := range urls {
		if err := s.limiter.Wait(ctx); err != nil {
			log.WarnContext(ctx, "fetch cycle cancelled", "err", err)
			return
		}
		err := s.scrapeProduct(ctx, log, url, fetchedAt)
		if err != nil {
			log.ErrorContext(ctx, "failed to process url", "url", url, "err", err)
			span.RecordError(err)
			continue
		}
	}

	log.InfoContext(ctx, "fetch cycle completed")
}

func (s Scraper) scrapeProduct(ctx context.Context, log *slog.Logger, url string, fetchedAt time.Time) error {
	ctx, span := tracer.Start(ctx, "scrapeProduct")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	markup, err := fetchPage(ctx, s.client, url)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		return err
	}

	name, offers, err := ExtractOffers(markup)
	if err != nil {
		span.SetStatus(codes.Error, "extraction failed")
		return err
	}
	log.DebugContext(ctx, "extracted offers", "url", url, "name", name, "offers", len(offers))

	productId, err := s.store.UpsertProduct(ctx, url, name)
	if err != nil {
		span.SetStatus(codes.Error, "product upsert failed")
		return err
	}

	snaps := make([]Snapshot, len(offers))
	for i, offer := range offers {
		price, ok := pricetext.ParsePrice(offer.Price)
		if !ok {
			log.WarnContext(ctx, "unparseable price text", "url", url, "shop", offer.ShopName, "text", offer.Price)
		}
		amount, ok := pricetext.ParseAmount(offer.Amount)
		if !ok {
			log.WarnContext(ctx, "unparseable amount text", "url", url, "shop", offer.ShopName, "text", offer.Amount)
		}
		snaps[i] = Snapshot{
			ShopName:     offer.ShopName,
			Price:        price,
			Amount:       offer.Amount,
			PricePerUnit: pricetext.PricePerUnit(price, amount),
			Expiration:   offer.Expiration,
			ShopsValid:   offer.ShopsValid,
			Note:         offer.Note,
		}
	}

	previousLow, hadHistory, err := s.store.LowestPriceBefore(ctx, productId, fetchedAt)
	if err != nil {
		span.SetStatus(codes.Error, "floor lookup failed")
		return err
	}

	err = s.store.AppendSnapshots(ctx, productId, snaps, fetchedAt)
	if err != nil {
		span.SetStatus(codes.Error, "snapshot append failed")
		return err
	}

	log.InfoContext(ctx, "processed product", "name", name, "offers", len(offers))

	if s.alerter != nil && hadHistory {
		s.maybeAlert(ctx, log, name, url, snaps, previousLow)
	}
	return nil
}

func (s Scraper) maybeAlert(ctx context.Context, log *slog.Logger, name, url string, snaps []Snapshot, previousLow float64) {
	best, found := cheapestSnapshot(snaps)
	if !found || best.Price >= previousLow {
		return
	}
	err := s.alerter.NotifyNewLow(ctx, name, url, best, previousLow)
	if err != nil {
		log.WarnContext(ctx, "failed to send new-low alert", "product", name, "err", err)
	}
}

// cheapestSnapshot ignores zero-priced rows, those are parse sentinels
// rather than real offers.
func cheapestSnapshot(snaps []Snapshot) (Snapshot, bool) {
	var best Snapshot
	found := false
	for _, snap := range snaps {
		if snap.Price <= 0 {
			continue
		}
		if !found || snap.Price < best.Price {
			best = snap
			found = true
		}
	}
	return best, found
}
