package pricetracker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const productPage = `<html><body>
<h1>Tuňák v oleji Rio Mare</h1>
<table class="wide discounts_table">
<tr class="discount_row">
  <td><span class="discounts_shop_name"><span>Albert</span></span></td>
  <td><strong class="discount_price_value">29,90 Kč</strong></td>
  <td><div class="discount_amount">/ 160 g</div></td>
  <td class="discounts_validity"><span>do 24. 8.</span></td>
  <td><div class="discounts_markets"><a href="#">všechny prodejny</a></div></td>
  <td><div class="discount_note">s věrnostní kartou</div></td>
</tr>
<tr class="discount_row">
  <td><span class="discounts_shop_name"><span>Billa</span></span></td>
  <td><strong class="discount_price_value">34,90 Kč</strong></td>
  <td><div class="discount_amount">/ 160 g</div></td>
  <td class="discounts_validity"><span>do 26. 8.</span></td>
  <td><div class="discounts_markets"><a href="#">vybrané prodejny</a></div></td>
</tr>
</table>
</body></html>`

func TestExtractOffers(t *testing.T) {
	name, offers, err := ExtractOffers([]byte(productPage))
	require.NoError(t, err)
	require.Equal(t, "Tuňák v oleji Rio Mare", name)

	expected := []Offer{
		{
			ShopName:   "Albert",
			Price:      "29,90 Kč",
			Amount:     "160 g",
			Expiration: "do 24. 8.",
			ShopsValid: "všechny prodejny",
			Note:       "s věrnostní kartou",
		},
		{
			ShopName:   "Billa",
			Price:      "34,90 Kč",
			Amount:     "160 g",
			Expiration: "do 26. 8.",
			ShopsValid: "vybrané prodejny",
			// the second row has no note element: the offer still
			// comes through complete with an empty note
			Note: "",
		},
	}
	if diff := cmp.Diff(expected, offers); diff != "" {
		t.Fatalf("unexpected offers (-want +got):\n%s", diff)
	}
}

func TestExtractOffersNoDiscountTable(t *testing.T) {
	page := `<html><body><h1>Čokoláda Studentská pečeť</h1><p>no discounts right now</p></body></html>`

	name, offers, err := ExtractOffers([]byte(page))
	require.NoError(t, err)
	require.Equal(t, "Čokoláda Studentská pečeť", name)
	require.Empty(t, offers)
}

func TestExtractOffersMissingHeading(t *testing.T) {
	page := `<html><body><div>nothing here</div></body></html>`

	name, offers, err := ExtractOffers([]byte(page))
	require.NoError(t, err)
	require.Equal(t, "Unknown Product", name)
	require.Empty(t, offers)
}

func TestExtractOffersMissingFields(t *testing.T) {
	page := `<html><body>
<h1>Zlaté polomáčené</h1>
<table class="wide discounts_table">
<tr class="discount_row">
  <td><strong class="discount_price_value">39,90 Kč</strong></td>
</tr>
<tr class="discount_row">
  <td><span class="discounts_shop_name"><span>Tesco</span></span></td>
  <td><strong class="discount_price_value">44,90 Kč</strong></td>
  <td><div class="discount_amount">/ 100 g</div></td>
</tr>
</table>
</body></html>`

	_, offers, err := ExtractOffers([]byte(page))
	require.NoError(t, err)
	require.Len(t, offers, 2)

	// a row missing most fields defaults field by field and never
	// aborts extraction of the rows after it
	require.Equal(t, Offer{
		ShopName:   "N/A",
		Price:      "39,90 Kč",
		Amount:     "N/A",
		Expiration: "N/A",
		ShopsValid: "N/A",
		Note:       "",
	}, offers[0])
	require.Equal(t, "Tesco", offers[1].ShopName)
	require.Equal(t, "100 g", offers[1].Amount)
}
