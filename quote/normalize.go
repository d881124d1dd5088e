package quote

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical textual date form (dd/mm/yyyy)
const DateLayout = "02/01/2006"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidRate = errors.New("invalid rate")
)

var (
	rateRegex         = regexp.MustCompile(`^\d+(\.\d+)?$`)
	dateSeparatorRepl = strings.NewReplacer(".", "/", "-", "/")
)

// NormalizeDate converts a day/month/year date using any of the
// '/', '.' or '-' separators (or an ISO yyyy-mm-dd date) into DateLayout
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(DateLayout), nil
	}

	t, err := time.Parse("2/1/2006", dateSeparatorRepl.Replace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return t.Format(DateLayout), nil
}

// FormatDate renders the calendar date of t in DateLayout
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeRate converts a locale-formatted rate into a '.'-separated
// decimal string. Values using ',' as the decimal separator may carry
// '.' thousands separators ("1.234,56" -> "1234.56").
// Canonical input is returned unchanged
func NormalizeRate(s string) (string, error) {
	v := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if v == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidRate)
	}

	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}

	if !rateRegex.MatchString(v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}

	if !d.IsPositive() {
		return "", fmt.Errorf("%w: %q is not positive", ErrInvalidRate, s)
	}

	return v, nil
}
