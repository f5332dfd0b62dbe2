package pricetracker

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/antzucaro/matchr"
)

// fetch_timestamp column format. Local wall-clock time, the same shape
// the history has always been recorded in, so date() grouping and MAX()
// comparisons keep working across old and new rows.
const timeLayout = "2006-01-02T15:04:05"

// Store owns the persistent schema: a products table keyed by source
// URL and an append-only price_history time series.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Snapshot is one normalized offer ready to be appended to the history.
type Snapshot struct {
	ShopName     string
	Price        float64
	Amount       string
	PricePerUnit float64
	Expiration   string
	ShopsValid   string
	Note         string
}

// UpsertProduct resolves the product id for a source URL, creating the
// row on first sight. The stored name is never rewritten: history pages
// keep a stable identity even when the site retitles the product. Drift
// is logged instead of silently swallowed.
func (s Store) UpsertProduct(ctx context.Context, url, name string) (int64, error) {
	var id int64
	var storedName string
	err := s.db.QueryRowContext(
		ctx, "SELECT id, name FROM products WHERE url = ?", url,
	).Scan(&id, &storedName)
	if err == nil {
		if storedName != name {
			slog.WarnContext(
				ctx, "product name drifted from first scrape",
				"url", url,
				"stored", storedName,
				"scraped", name,
				"similarity", matchr.JaroWinkler(storedName, name, false),
			)
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := s.db.ExecContext(
		ctx, "INSERT INTO products (url, name) VALUES (?, ?)", url, name,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AppendSnapshots writes one history row per offer, all sharing
// fetchedAt, as a single transaction. Nothing is deduplicated: the
// history is an append-only record of what the site showed, re-running
// on unchanged data appends again.
func (s Store) AppendSnapshots(ctx context.Context, productID int64, snaps []Snapshot, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	timestamp := fetchedAt.Format(timeLayout)
	for _, snap := range snaps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO price_history
			(product_id, shop_name, price, amount, price_per_gram,
			 expiration, shops_valid, additional_note, fetch_timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			productID,
			snap.ShopName,
			snap.Price,
			snap.Amount,
			snap.PricePerUnit,
			snap.Expiration,
			snap.ShopsValid,
			snap.Note,
			timestamp,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LowestPriceBefore reports the cheapest positive price ever recorded
// for a product strictly before the given time. ok is false when no
// such row exists. Zero-priced sentinel rows (unparseable source text)
// are not real prices and do not count.
func (s Store) LowestPriceBefore(ctx context.Context, productID int64, before time.Time) (float64, bool, error) {
	var price sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(price) FROM price_history
		WHERE product_id = ? AND price > 0 AND fetch_timestamp < ?`,
		productID, before.Format(timeLayout),
	).Scan(&price)
	if err != nil {
		return 0, false, err
	}
	if !price.Valid {
		return 0, false, nil
	}
	return price.Float64, true, nil
}
