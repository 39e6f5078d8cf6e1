package market

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrNoPrices is returned when a search page shows no parsable prices.
var ErrNoPrices = errors.New("no prices found")

var (
	priceText  = regexp.MustCompile(`^[\d\s,.]+$`)
	priceNoise = strings.NewReplacer("\u2009", "", "\u202f", " ", "\u00a0", " ", "₽", "")
)

// PriceRange is the spread of prices seen for a product.
type PriceRange struct {
	Product string
	Min     float64
	Max     float64
	Samples int
}

func (r PriceRange) String() string {
	return fmt.Sprintf("Диапазон цен на '%s': от %s ₽ до %s ₽", r.Product, formatPrice(r.Min), formatPrice(r.Max))
}

// ParsePrice reads a rendered price such as "12 990 ₽" or "1 299,50".
// Text that is not a bare number is rejected.
func ParsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(priceNoise.Replace(text))
	if text == "" || !priceText.MatchString(text) {
		return 0, false
	}

	text = strings.ReplaceAll(strings.Join(strings.Fields(text), ""), ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NewPriceRange computes the range over the parsable texts.
func NewPriceRange(product string, texts []string) (PriceRange, error) {
	var prices []float64
	for _, t := range texts {
		if v, ok := ParsePrice(t); ok {
			prices = append(prices, v)
		}
	}
	if len(prices) == 0 {
		return PriceRange{}, fmt.Errorf("%q: %w", product, ErrNoPrices)
	}

	return PriceRange{
		Product: product,
		Min:     slices.Min(prices),
		Max:     slices.Max(prices),
		Samples: len(prices),
	}, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
