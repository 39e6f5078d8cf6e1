// Package gift holds the candidate gift catalog: the record type and its
// validation, the built-in fallback catalog, and the generator that asks the
// model for a fresh catalog per person.
package gift

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// JSON keys used by the model and by the fallback catalog.
const (
	KeyName        = "подарок"
	KeyDescription = "описание"
	KeyCost        = "стоимость"
	KeyRelevance   = "релевантность"
	KeyQuery       = "query"
)

// Record is a single candidate gift.
type Record struct {
	Name        string `json:"подарок"       validate:"required"`
	Description string `json:"описание"`
	Cost        string `json:"стоимость"`
	Relevance   int    `json:"релевантность" validate:"min=1,max=10"`
	Query       string `json:"query"`
}

// SearchQuery returns the marketplace search text, falling back to the name.
func (r Record) SearchQuery() string {
	if q := strings.TrimSpace(r.Query); q != "" {
		return q
	}
	return r.Name
}

var validate = validator.New()

// ValidateRecord converts a parsed JSON object into a Record. It fails with a
// SchemaError when a required key is missing, the name is blank, or relevance
// does not coerce to an integer in [1,10]. The query key is optional.
func ValidateRecord(obj map[string]any) (Record, error) {
	if obj == nil {
		return Record{}, errs.NewSchemaError("gift: not an object", nil)
	}

	for _, key := range []string{KeyName, KeyDescription, KeyCost, KeyRelevance} {
		if _, ok := obj[key]; !ok {
			return Record{}, errs.NewSchemaError(fmt.Sprintf("gift: missing field %q", key), nil)
		}
	}

	relevance, err := coerceInt(obj[KeyRelevance])
	if err != nil {
		return Record{}, errs.NewSchemaError("gift: bad relevance", err)
	}

	rec := Record{
		Name:        strings.TrimSpace(text(obj[KeyName])),
		Description: strings.TrimSpace(text(obj[KeyDescription])),
		Cost:        strings.TrimSpace(text(obj[KeyCost])),
		Relevance:   relevance,
		Query:       strings.TrimSpace(text(obj[KeyQuery])),
	}

	if err := validate.Struct(rec); err != nil {
		return Record{}, errs.NewSchemaError(fmt.Sprintf("gift %q", rec.Name), err)
	}

	return rec, nil
}

// coerceInt accepts JSON numbers and numeric strings whose value is integral.
func coerceInt(v any) (int, error) {
	var f float64

	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("out of range: %v", f)
	}

	return int(f), nil
}

// text renders scalar JSON values as strings; the cost field is sometimes a number.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
