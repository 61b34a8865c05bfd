package stages

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
)

// stripFence removes a surrounding ``` or ```json fence, the only decoration
// tolerated around structured output.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

// decimal is plain decimal notation with an optional exponent. strconv alone
// would also take hex floats, digit separators, NaN and Inf.
var decimal = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ParseNumber accepts exactly one finite decimal number.
func ParseNumber(text string) (float64, error) {
	raw := stripFence(text)
	if !decimal.MatchString(raw) {
		return 0, fmt.Errorf("%w: expected a single number, got %q", domain.ErrParse, truncate(raw))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: expected a single number, got %q", domain.ErrParse, truncate(raw))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite number %q", domain.ErrParse, truncate(raw))
	}
	return v, nil
}

// ParseSeries accepts a non-empty JSON array of numbers and nothing else.
// A null element is rejected rather than read as zero.
func ParseSeries(text string) ([]float64, error) {
	raw := stripFence(text)
	var elems []*float64
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of numbers, got %q", domain.ErrParse, truncate(raw))
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", domain.ErrParse)
	}
	values := make([]float64, len(elems))
	for i, v := range elems {
		if v == nil {
			return nil, fmt.Errorf("%w: element %d is null", domain.ErrParse, i)
		}
		values[i] = *v
	}
	return values, nil
}

func truncate(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
