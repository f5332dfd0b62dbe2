package pricetracker

import (
	"bytes"
	"pricewatch-backend/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Offer is one retailer's discount listing as it appears on the page,
// fields still in their raw text form.
type Offer struct {
	ShopName   string
	Price      string
	Amount     string
	Expiration string
	ShopsValid string
	Note       string
}

const unknownProductName = "Unknown Product"

// ExtractOffers pulls the product name and the per-shop discount rows
// out of a product page. A page without the discount table is a normal
// outcome (not every product is discounted right now) and yields an
// empty offer list. Missing sub-elements default field by field, one
// broken cell never loses the rest of the row.
func ExtractOffers(markup []byte) (string, []Offer, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return "", nil, err
	}

	name := unknownProductName
	if heading := doc.Find("h1").First(); heading.Length() > 0 {
		name = htmlutil.SelectionText(heading)
	}

	container := doc.Find("table.wide.discounts_table").First()
	if container.Length() == 0 {
		return name, nil, nil
	}

	var offers []Offer
	container.Find("tr.discount_row").Each(func(_ int, row *goquery.Selection) {
		offers = append(offers, Offer{
			ShopName:   textOrDefault(row.Find("span.discounts_shop_name span"), "N/A"),
			Price:      textOrDefault(row.Find("strong.discount_price_value"), "N/A"),
			Amount:     amountText(row),
			Expiration: textOrDefault(row.Find("td.discounts_validity span"), "N/A"),
			ShopsValid: textOrDefault(row.Find("div.discounts_markets a"), "N/A"),
			Note:       textOrDefault(row.Find("div.discount_note"), ""),
		})
	})

	return name, offers, nil
}

func textOrDefault(sel *goquery.Selection, fallback string) string {
	if sel.Length() == 0 {
		return fallback
	}
	return htmlutil.SelectionText(sel.First())
}

func amountText(row *goquery.Selection) string {
	sel := row.Find("div.discount_amount")
	if sel.Length() == 0 {
		return "N/A"
	}
	// amounts render as "/ 160 g", the slash is layout noise
	text := strings.ReplaceAll(htmlutil.SelectionText(sel.First()), "/", "")
	return strings.TrimSpace(text)
}
