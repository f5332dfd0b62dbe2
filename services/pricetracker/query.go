package pricetracker

import (
	"context"
	"fmt"
	"pricewatch-backend/lib/timezone"
	"time"
)

// Deal is one stored snapshot as the read side presents it.
type Deal struct {
	ShopName     string
	Price        float64
	Amount       string
	PricePerUnit float64
	Expiration   string
	ShopsValid   string
	Note         string
	FetchedAt    time.Time
}

// ProductDeals carries a product together with its best current offers.
type ProductDeals struct {
	ID    int64
	Name  string
	URL   string
	Deals []Deal
}

// PricePoint is one calendar day of a product's history: the lowest
// price seen that day and the shop that offered it.
type PricePoint struct {
	Date     string
	Price    float64
	ShopName string
}

type ProductHistory struct {
	ID     int64
	Name   string
	URL    string
	Points []PricePoint
}

// CurrentDeals lists, for every tracked product, the snapshots from its
// most recent fetch cycle, cheapest per unit first, capped at three.
func (s Store) CurrentDeals(ctx context.Context) ([]ProductDeals, error) {
	ctx, span := tracer.Start(ctx, "CurrentDeals")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, url FROM products ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductDeals
	for rows.Next() {
		var p ProductDeals
		if err := rows.Scan(&p.ID, &p.Name, &p.URL); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		deals, err := s.latestDeals(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Deals = deals
	}
	return products, nil
}

func (s Store) latestDeals(ctx context.Context, productID int64) ([]Deal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT shop_name, price, amount, price_per_gram, expiration,
		       shops_valid, additional_note, fetch_timestamp
		FROM price_history
		WHERE product_id = ? AND fetch_timestamp = (
			SELECT MAX(fetch_timestamp) FROM price_history WHERE product_id = ?
		)
		ORDER BY price_per_gram ASC
		LIMIT 3`,
		productID, productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		var d Deal
		var timestamp string
		err := rows.Scan(
			&d.ShopName, &d.Price, &d.Amount, &d.PricePerUnit,
			&d.Expiration, &d.ShopsValid, &d.Note, &timestamp,
		)
		if err != nil {
			return nil, err
		}
		d.FetchedAt, err = time.ParseInLocation(timeLayout, timestamp, timezone.Location)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// PriceHistory reports one point per calendar date carrying that day's
// minimum price.
func (s Store) PriceHistory(ctx context.Context, productID int64) (ProductHistory, error) {
	ctx, span := tracer.Start(ctx, "PriceHistory")
	defer span.End()

	history := ProductHistory{ID: productID}
	err := s.db.QueryRowContext(
		ctx, "SELECT name, url FROM products WHERE id = ?", productID,
	).Scan(&history.Name, &history.URL)
	if err != nil {
		return ProductHistory{}, fmt.Errorf("product %d: %w", productID, err)
	}

	// sqlite resolves the bare shop_name column from the row that
	// produced MIN(price), so each day is attributed to the shop that
	// actually had the cheapest offer
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(fetch_timestamp), MIN(price), shop_name
		FROM price_history
		WHERE product_id = ?
		GROUP BY date(fetch_timestamp)
		ORDER BY date(fetch_timestamp)`,
		productID,
	)
	if err != nil {
		return ProductHistory{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var point PricePoint
		if err := rows.Scan(&point.Date, &point.Price, &point.ShopName); err != nil {
			return ProductHistory{}, err
		}
		history.Points = append(history.Points, point)
	}
	return history, rows.Err()
}
