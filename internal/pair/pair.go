// Package pair handles currency pair formatting, parsing and validation, and
// forward contract due date parsing.
package pair

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Currencies selectable on the desk.
var Currencies = []string{"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "BRL"}

var supported = func() map[string]bool {
	m := make(map[string]bool, len(Currencies))
	for _, c := range Currencies {
		m[c] = true
	}
	return m
}()

// codeRegex matches the currency codes the API accepts: 3 to 10 letters or digits.
var codeRegex = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidCode         = errors.New("pair: invalid currency code")
	ErrUnsupportedCurrency = errors.New("pair: unsupported currency")
	ErrInvalidPair         = errors.New("pair: invalid pair format")
	ErrInvalidDueDate      = errors.New("pair: invalid due date")
)

// Pair is a parsed BASE/QUOTE currency pair.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// String formats the pair as BASE/QUOTE.
func (p Pair) String() string {
	return Format(p.Base, p.Quote)
}

// Format joins base and quote as the server does: "<base>/<quote>".
func Format(base, quote string) string {
	return base + "/" + quote
}

// NormalizeCode upper-cases and validates a currency code for the API.
// Any 3..10 character alphanumeric code is accepted.
func NormalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !codeRegex.MatchString(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return c, nil
}

// Supported reports whether code is one of the desk's selectable currencies.
func Supported(code string) bool {
	return supported[strings.ToUpper(strings.TrimSpace(code))]
}

// New builds a pair restricted to the selectable currencies.
func New(base, quote string) (Pair, error) {
	b := strings.ToUpper(strings.TrimSpace(base))
	q := strings.ToUpper(strings.TrimSpace(quote))
	if !supported[b] {
		return Pair{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, base)
	}
	if !supported[q] {
		return Pair{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, quote)
	}
	return Pair{Base: b, Quote: q}, nil
}

// Parse parses "BASE/QUOTE". Codes are validated with NormalizeCode.
func Parse(s string) (Pair, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("%w: %s (expected BASE/QUOTE)", ErrInvalidPair, s)
	}
	b, err := NormalizeCode(parts[0])
	if err != nil {
		return Pair{}, err
	}
	q, err := NormalizeCode(parts[1])
	if err != nil {
		return Pair{}, err
	}
	return Pair{Base: b, Quote: q}, nil
}

// ParseDueDate parses a YYYY-MM-DD due date in UTC.
func ParseDueDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDueDate, s)
	}
	return t, nil
}

// DaysLeft returns whole calendar days from now's date to due.
// Past due dates yield negative values.
func DaysLeft(due, now time.Time) int {
	n := now.UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	d := due.UTC()
	dueDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(today).Hours() / 24)
}
