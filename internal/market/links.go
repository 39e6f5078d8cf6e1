// Package market builds marketplace search links and looks up live price
// ranges for a product.
package market

import (
	"net/url"
	"strings"

	"github.com/popov-vn/ai-agent/internal/gift"
)

const (
	OzonSearchBase        = "https://www.ozon.ru/search/?text="
	WildberriesSearchBase = "https://www.wildberries.ru/catalog/0/search.aspx?search="
)

// Link is one marketplace search link.
type Link struct {
	Marketplace string
	URL         string
}

// OzonSearchURL returns the Ozon search page for query.
func OzonSearchURL(query string) string {
	return OzonSearchBase + url.QueryEscape(strings.TrimSpace(query))
}

// WildberriesSearchURL returns the Wildberries search page for query.
func WildberriesSearchURL(query string) string {
	return WildberriesSearchBase + url.QueryEscape(strings.TrimSpace(query))
}

// Links returns the search links for a catalog entry.
func Links(rec gift.Record) []Link {
	q := rec.SearchQuery()
	return []Link{
		{Marketplace: "Ozon", URL: OzonSearchURL(q)},
		{Marketplace: "Wildberries", URL: WildberriesSearchURL(q)},
	}
}
