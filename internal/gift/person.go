package gift

import (
	"fmt"
	"strings"
	"unicode/utf8"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// MinPersonInfoLength is the shortest description worth sending to the model.
const MinPersonInfoLength = 10

var dangerousPatterns = []string{"<script", "javascript:", "eval(", "exec(", "import("}

// ValidatePersonInfo trims a person description and rejects input that is too
// short or looks like an injection attempt.
func ValidatePersonInfo(info string) (string, error) {
	info = strings.TrimSpace(info)

	if n := utf8.RuneCountInString(info); n < MinPersonInfoLength {
		return "", errs.NewValidationError(
			fmt.Sprintf("person info is too short: %d characters, need at least %d", n, MinPersonInfoLength), nil)
	}

	lower := strings.ToLower(info)
	for _, p := range dangerousPatterns {
		if strings.Contains(lower, p) {
			return "", errs.NewValidationError(fmt.Sprintf("person info contains forbidden pattern %q", p), nil)
		}
	}

	return info, nil
}
