package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"pricewatch-backend/lib/testutil"
	"pricewatch-backend/lib/timezone"
	"pricewatch-backend/services/pricetracker"
	"pricewatch-backend/services/pricetracker/db"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/pricetracker/server",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := pricetracker.NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	id, err := store.UpsertProduct(ctx, "https://www.kupi.cz/sleva/tunak-v-oleji-rio-mare", "Tuňák v oleji Rio Mare")
	require.NoError(t, err)
	err = store.AppendSnapshots(ctx, id, []pricetracker.Snapshot{
		{ShopName: "Albert", Price: 29.90, Amount: "160 g", PricePerUnit: 29.90 / 160},
		{ShopName: "Billa", Price: 34.90, Amount: "160 g", PricePerUnit: 34.90 / 160},
	}, time.Date(2025, 1, 10, 8, 0, 0, 0, timezone.Location))
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewService(store).Register(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	{
		res, err := http.Get(ts.URL + "/api/products")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		var products []productDealsJson
		err = json.NewDecoder(res.Body).Decode(&products)
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Tuňák v oleji Rio Mare", products[0].Name)
		require.Len(t, products[0].Deals, 2)
		require.Equal(t, "Albert", products[0].Deals[0].ShopName)
	}

	{
		res, err := http.Get(ts.URL + "/api/products/1/history")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		var history productHistoryJson
		err = json.NewDecoder(res.Body).Decode(&history)
		require.NoError(t, err)
		require.Len(t, history.History, 1)
		require.Equal(t, "2025-01-10", history.History[0].Date)
		require.Equal(t, 29.90, history.History[0].Price)
	}

	{
		res, err := http.Get(ts.URL + "/api/products/99/history")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusNotFound, res.StatusCode)
	}

	{
		res, err := http.Get(ts.URL + "/api/products/abc/history")
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusBadRequest, res.StatusCode)
	}
}
