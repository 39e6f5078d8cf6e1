package persona

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// Verdict JSON keys shared by every persona.
const (
	KeyChosenGift = "выбранный_подарок"
	KeyRationale  = "обоснование"
)

// Metric is the one persona-specific score carried by a verdict.
// Present is false when the model omitted the field or sent a non-number.
type Metric struct {
	Field   string
	Value   float64
	Present bool
}

// Verdict is one persona's choice from the catalog.
type Verdict struct {
	Persona   ID
	Gift      string
	Rationale string
	Metric    Metric
	// Fallback marks a verdict substituted after a failed evaluation.
	Fallback bool
}

// ValidateVerdict converts a parsed JSON object into a Verdict for identity.
// The chosen gift and a non-blank rationale are required; the metric is
// optional and dropped when outside the persona's range.
func ValidateVerdict(obj map[string]any, identity Identity) (Verdict, error) {
	if obj == nil {
		return Verdict{}, errs.NewSchemaError("verdict: not an object", nil)
	}

	giftName, ok := obj[KeyChosenGift].(string)
	if !ok || strings.TrimSpace(giftName) == "" {
		return Verdict{}, errs.NewSchemaError(fmt.Sprintf("verdict: missing field %q", KeyChosenGift), nil)
	}

	rawRationale, ok := obj[KeyRationale]
	if !ok || rawRationale == nil {
		return Verdict{}, errs.NewSchemaError(fmt.Sprintf("verdict: missing field %q", KeyRationale), nil)
	}
	rationale, ok := rawRationale.(string)
	if !ok {
		rationale = fmt.Sprint(rawRationale)
	}
	if strings.TrimSpace(rationale) == "" {
		return Verdict{}, errs.NewSchemaError(fmt.Sprintf("verdict: empty field %q", KeyRationale), nil)
	}

	// Out-of-range values count as absent and get the default score.
	metric := Metric{Field: identity.MetricField}
	if v, ok := coerceFloat(obj[identity.MetricField]); ok && identity.InRange(v) {
		metric.Value = v
		metric.Present = true
	}

	return Verdict{
		Persona:   identity.ID,
		Gift:      strings.TrimSpace(giftName),
		Rationale: strings.TrimSpace(rationale),
		Metric:    metric,
	}, nil
}

// FallbackVerdict names the first catalog entry with the persona's nominal metric.
func FallbackVerdict(identity Identity, firstGift string) Verdict {
	return Verdict{
		Persona:   identity.ID,
		Gift:      firstGift,
		Rationale: fmt.Sprintf("Подарок выбран агентом %s (резервный режим)", identity.ID),
		Metric:    Metric{Field: identity.MetricField, Value: identity.Fallback, Present: true},
		Fallback:  true,
	}
}

func coerceFloat(v any) (float64, bool) {
	var f float64

	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "%"))
		parsed, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
