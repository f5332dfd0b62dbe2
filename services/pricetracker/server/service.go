// Package server exposes the read side of the price tracker as a small
// JSON API. It only ever reads the store, the scrape pipeline may be
// running in another process against the same database file.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"pricewatch-backend/services/pricetracker"
)

type Service struct {
	store pricetracker.Store
}

func NewService(store pricetracker.Store) Service {
	return Service{store: store}
}

func (s Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", s.handleCurrentDeals)
	mux.HandleFunc("GET /api/products/{id}/history", s.handlePriceHistory)
}

type dealJson struct {
	ShopName     string  `json:"shop_name"`
	Price        float64 `json:"price"`
	Amount       string  `json:"amount"`
	PricePerGram float64 `json:"price_per_gram"`
	Expiration   string  `json:"expiration"`
	ShopsValid   string  `json:"shops_valid"`
	Note         string  `json:"additional_note"`
	FetchedAt    string  `json:"fetch_timestamp"`
}

type productDealsJson struct {
	Id    int64      `json:"id"`
	Name  string     `json:"name"`
	Url   string     `json:"url"`
	Deals []dealJson `json:"deals"`
}

func (s Service) handleCurrentDeals(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.CurrentDeals(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	out := make([]productDealsJson, len(products))
	for i, p := range products {
		deals := make([]dealJson, len(p.Deals))
		for j, d := range p.Deals {
			deals[j] = dealJson{
				ShopName:     d.ShopName,
				Price:        d.Price,
				Amount:       d.Amount,
				PricePerGram: d.PricePerUnit,
				Expiration:   d.Expiration,
				ShopsValid:   d.ShopsValid,
				Note:         d.Note,
				FetchedAt:    d.FetchedAt.Format("2006-01-02T15:04:05"),
			}
		}
		out[i] = productDealsJson{Id: p.ID, Name: p.Name, Url: p.URL, Deals: deals}
	}
	writeJson(w, r, out)
}

type pricePointJson struct {
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
	ShopName string  `json:"shop"`
}

type productHistoryJson struct {
	Id      int64            `json:"id"`
	Name    string           `json:"name"`
	Url     string           `json:"url"`
	History []pricePointJson `json:"history"`
}

func (s Service) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	history, err := s.store.PriceHistory(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	points := make([]pricePointJson, len(history.Points))
	for i, p := range history.Points {
		points[i] = pricePointJson{Date: p.Date, Price: p.Price, ShopName: p.ShopName}
	}
	writeJson(w, r, productHistoryJson{
		Id:      history.ID,
		Name:    history.Name,
		Url:     history.URL,
		History: points,
	})
}

func writeJson(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to encode response", "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	slog.WarnContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}
