package param

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the grammar and conversion of one value type.
// Kinds are stateless and can be shared between any number of nodes.
type Kind[T any] struct {
	Name    string
	Pattern string
	parse   func(string) (T, error)
	isBool  bool
}

// Parse converts raw text into a typed value.
func (k Kind[T]) Parse(s string) (T, error) {
	return k.parse(s)
}

// NewKind declares a custom value grammar.
func NewKind[T any](name, pattern string, parse func(string) (T, error)) Kind[T] {
	return Kind[T]{Name: name, Pattern: pattern, parse: parse}
}

const (
	uintPattern      = "[0-9]+"
	ratioPattern     = `0\.[0-9]+`
	durationPattern  = "[0-9]+[smh]"
	countPattern     = "[0-9]+[bmk]?"
	ratePattern      = "[0-9]+/s"
	commaListPattern = "[^=,]+(,[^=,]+)*"
)

// Built-in value kinds
var (
	Uint      = Kind[uint64]{Name: "unsigned integer", Pattern: uintPattern, parse: ParseUint}
	Ratio     = Kind[float64]{Name: "ratio", Pattern: ratioPattern, parse: ParseRatio}
	Flag      = Kind[bool]{Name: "flag", Pattern: "", parse: ParseFlag, isBool: true}
	String    = Kind[string]{Name: "string", Pattern: ".*", parse: ParseString}
	Duration  = Kind[time.Duration]{Name: "duration", Pattern: durationPattern, parse: ParseDuration}
	Count     = Kind[uint64]{Name: "count", Pattern: countPattern, parse: ParseCount}
	Rate      = Kind[uint64]{Name: "rate", Pattern: ratePattern, parse: ParseRate}
	CommaList = Kind[[]string]{Name: "comma delimited list", Pattern: commaListPattern, parse: ParseCommaList}
)

// ParseUint accepts digits only.
func ParseUint(s string) (uint64, error) {
	v, ok := parseDigits(s)
	if !ok {
		return 0, &ValueError{Value: s, Pattern: uintPattern}
	}
	if v.overflow {
		return 0, &ValueError{Value: s, Pattern: uintPattern, Reason: "value out of range"}
	}
	return v.n, nil
}

// ParseRatio accepts "0." followed by at least one digit.
func ParseRatio(s string) (float64, error) {
	if len(s) < 3 || s[0] != '0' || s[1] != '.' || !allDigits(s[2:]) {
		return 0, &ValueError{Value: s, Pattern: ratioPattern}
	}
	// The grammar above is a strict subset of what ParseFloat accepts.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValueError{Value: s, Pattern: ratioPattern, Reason: err.Error()}
	}
	return f, nil
}

// ParseFlag accepts only the empty string; presence of the flag means true.
func ParseFlag(s string) (bool, error) {
	if s != "" {
		return false, &ValueError{Value: s, Reason: "Boolean flag cannot have any value."}
	}
	return true, nil
}

// ParseString never fails.
func ParseString(s string) (string, error) {
	return s, nil
}

// ParseDuration accepts digits followed by exactly one of s, m, h.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, &ValueError{Value: s, Pattern: durationPattern}
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	default:
		return 0, &ValueError{Value: s, Pattern: durationPattern}
	}
	v, ok := parseDigits(s[:len(s)-1])
	if !ok {
		return 0, &ValueError{Value: s, Pattern: durationPattern}
	}
	if v.overflow || v.n > uint64(math.MaxInt64/int64(unit)) {
		return 0, &ValueError{Value: s, Pattern: durationPattern, Reason: "duration out of range"}
	}
	return time.Duration(v.n) * unit, nil
}

// ParseCount accepts digits with an optional k (thousand), m (million) or b (billion) suffix.
func ParseCount(s string) (uint64, error) {
	if s == "" {
		return 0, &ValueError{Value: s, Pattern: countPattern}
	}
	digits, mult := s, uint64(1)
	switch s[len(s)-1] {
	case 'k':
		digits, mult = s[:len(s)-1], 1_000
	case 'm':
		digits, mult = s[:len(s)-1], 1_000_000
	case 'b':
		digits, mult = s[:len(s)-1], 1_000_000_000
	}
	v, ok := parseDigits(digits)
	if !ok {
		return 0, &ValueError{Value: s, Pattern: countPattern}
	}
	if v.overflow || v.n > math.MaxUint64/mult {
		return 0, &ValueError{Value: s, Pattern: countPattern, Reason: "count out of range"}
	}
	return v.n * mult, nil
}

// ParseRate accepts digits followed by the literal "/s" and returns the digit portion.
func ParseRate(s string) (uint64, error) {
	if !strings.HasSuffix(s, "/s") {
		return 0, &ValueError{Value: s, Pattern: ratePattern}
	}
	v, ok := parseDigits(s[:len(s)-2])
	if !ok {
		return 0, &ValueError{Value: s, Pattern: ratePattern}
	}
	if v.overflow {
		return 0, &ValueError{Value: s, Pattern: ratePattern, Reason: "rate out of range"}
	}
	return v.n, nil
}

// ParseCommaList accepts one or more non-empty elements separated by commas.
// Elements may not contain '='.
func ParseCommaList(s string) ([]string, error) {
	if s == "" {
		return nil, &ValueError{Value: s, Pattern: commaListPattern}
	}
	n := 1
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] == '=' {
			return nil, &ValueError{Value: s, Pattern: commaListPattern}
		}
		if i == len(s) || s[i] == ',' {
			if i == start {
				return nil, &ValueError{Value: s, Pattern: commaListPattern}
			}
			if i < len(s) {
				n++
			}
			start = i + 1
		}
	}
	return strings.SplitN(s, ",", n), nil
}

type digits struct {
	n        uint64
	overflow bool
}

// parseDigits parses a non-empty run of ASCII digits: '8' - '0' = 8
func parseDigits(s string) (digits, bool) {
	if s == "" {
		return digits{}, false
	}
	var d digits
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return digits{}, false
		}
		digit := uint64(c - '0')
		if d.n > (math.MaxUint64-digit)/10 {
			// Keep scanning so that a non-digit still reports a grammar error.
			d.overflow = true
			continue
		}
		d.n = d.n*10 + digit
	}
	return d, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
