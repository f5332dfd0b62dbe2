package pricetracker

import (
	"context"
	"pricewatch-backend/lib/testutil"
	"pricewatch-backend/lib/timezone"
	"pricewatch-backend/services/pricetracker/db"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpsertProduct(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/pricetracker/store",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	url := "https://www.kupi.cz/sleva/tunak-v-oleji-rio-mare"

	id, err := store.UpsertProduct(ctx, url, "Tuňák v oleji Rio Mare")
	require.NoError(t, err)

	// re-scraping the same url never creates a second product row,
	// even when the observed name drifted
	again, err := store.UpsertProduct(ctx, url, "Tuňák Rio Mare 160g")
	require.NoError(t, err)
	require.Equal(t, id, again)

	var count int
	var name string
	err = setup.DB.QueryRow("SELECT COUNT(*) FROM products").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	err = setup.DB.QueryRow("SELECT name FROM products WHERE id = ?", id).Scan(&name)
	require.NoError(t, err)
	require.Equal(t, "Tuňák v oleji Rio Mare", name)

	other, err := store.UpsertProduct(ctx, "https://www.kupi.cz/sleva/cokopiskoty-figaro", "Čokopiškoty Figaro")
	require.NoError(t, err)
	require.NotEqual(t, id, other)
}

func TestAppendSnapshots(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/pricetracker/append",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	id, err := store.UpsertProduct(ctx, "https://www.kupi.cz/sleva/zlate-polomacene-opavia", "Zlaté polomáčené Opavia")
	require.NoError(t, err)

	firstCycle := time.Date(2025, 1, 10, 8, 0, 0, 0, timezone.Location)
	err = store.AppendSnapshots(ctx, id, []Snapshot{
		{ShopName: "Albert", Price: 29.90, Amount: "160 g", PricePerUnit: 29.90 / 160},
		{ShopName: "Billa", Price: 34.90, Amount: "160 g", PricePerUnit: 34.90 / 160},
	}, firstCycle)
	require.NoError(t, err)

	{
		var count, timestamps int
		err := setup.DB.QueryRow("SELECT COUNT(*), COUNT(DISTINCT fetch_timestamp) FROM price_history").
			Scan(&count, &timestamps)
		require.NoError(t, err)
		require.Equal(t, 2, count)
		require.Equal(t, 1, timestamps)
	}

	// a later cycle appends, it never overwrites or deduplicates
	secondCycle := time.Date(2025, 1, 12, 8, 0, 0, 0, timezone.Location)
	err = store.AppendSnapshots(ctx, id, []Snapshot{
		{ShopName: "Albert", Price: 29.90, Amount: "160 g", PricePerUnit: 29.90 / 160},
		{ShopName: "Billa", Price: 27.90, Amount: "160 g", PricePerUnit: 27.90 / 160},
	}, secondCycle)
	require.NoError(t, err)

	{
		var snapshots, products int
		err := setup.DB.QueryRow("SELECT COUNT(*) FROM price_history").Scan(&snapshots)
		require.NoError(t, err)
		err = setup.DB.QueryRow("SELECT COUNT(*) FROM products").Scan(&products)
		require.NoError(t, err)
		require.Equal(t, 4, snapshots)
		require.Equal(t, 1, products)
	}
}

func TestLowestPriceBefore(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/pricetracker/lowest",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	id, err := store.UpsertProduct(ctx, "https://www.kupi.cz/sleva/cokolada-studentska-pecet-orion", "Studentská pečeť")
	require.NoError(t, err)

	day1 := time.Date(2025, 1, 10, 8, 0, 0, 0, timezone.Location)
	day2 := time.Date(2025, 1, 12, 8, 0, 0, 0, timezone.Location)

	_, found, err := store.LowestPriceBefore(ctx, id, day1)
	require.NoError(t, err)
	require.False(t, found)

	err = store.AppendSnapshots(ctx, id, []Snapshot{
		{ShopName: "Albert", Price: 39.90},
		// a zero price is an unparseable-text sentinel, not a deal
		{ShopName: "Billa", Price: 0},
	}, day1)
	require.NoError(t, err)

	price, found, err := store.LowestPriceBefore(ctx, id, day2)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 39.90, price)
}
