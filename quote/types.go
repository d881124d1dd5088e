package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCurrency = errors.New("invalid currency")

type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// Currencies returns the supported currencies, in processing order
func Currencies() []Currency {
	return []Currency{USD, EUR}
}

func (c Currency) String() string {
	return string(c)
}

// Name returns the label the central bank uses for the currency
// on its pages and in the indicator payload
func (c Currency) Name() string {
	switch c {
	case USD:
		return "Dólar"
	case EUR:
		return "Euro"
	default:
		return ""
	}
}

// ParseCurrency parses an ISO code into a supported currency
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))

	switch c {
	case USD, EUR:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
}

// CurrencyFromName maps a central bank currency label to a supported currency
func CurrencyFromName(name string) (Currency, bool) {
	name = strings.TrimSpace(name)

	for _, c := range Currencies() {
		if strings.EqualFold(name, c.Name()) {
			return c, true
		}
	}

	return "", false
}

// Quote is a single PTAX buy/sell observation.
// The zero value is not valid, use New
type Quote struct {
	date     string
	currency Currency
	buyRate  string
	sellRate string
	source   string
}

// New creates a quote, normalizing the date and both rates
// into their canonical form
func New(date string, currency Currency, buyRate, sellRate, source string) (Quote, error) {
	c, err := ParseCurrency(currency.String())
	if err != nil {
		return Quote{}, err
	}

	d, err := NormalizeDate(date)
	if err != nil {
		return Quote{}, err
	}

	buy, err := NormalizeRate(buyRate)
	if err != nil {
		return Quote{}, fmt.Errorf("buy rate: %w", err)
	}

	sell, err := NormalizeRate(sellRate)
	if err != nil {
		return Quote{}, fmt.Errorf("sell rate: %w", err)
	}

	return Quote{
		date:     d,
		currency: c,
		buyRate:  buy,
		sellRate: sell,
		source:   strings.TrimSpace(source),
	}, nil
}

// Date returns the canonical dd/mm/yyyy date
func (q Quote) Date() string {
	return q.date
}

func (q Quote) Currency() Currency {
	return q.currency
}

// BuyRate returns the canonical buy rate
func (q Quote) BuyRate() string {
	return q.buyRate
}

// SellRate returns the canonical sell rate
func (q Quote) SellRate() string {
	return q.sellRate
}

// Source returns where the quote was extracted from
func (q Quote) Source() string {
	return q.source
}

// Header is the fixed tabular column order
var Header = []string{"date", "currency", "buy_rate", "sell_rate", "source"}

// Record returns the quote fields in Header order
func (q Quote) Record() []string {
	return []string{
		q.date,
		q.currency.String(),
		q.buyRate,
		q.sellRate,
		q.source,
	}
}

type quoteJSON struct {
	Date     string   `json:"date"`
	Currency Currency `json:"currency"`
	BuyRate  string   `json:"buy_rate"`
	SellRate string   `json:"sell_rate"`
	Source   string   `json:"source"`
}

func (q Quote) MarshalJSON() ([]byte, error) {
	return json.Marshal(quoteJSON{
		Date:     q.date,
		Currency: q.currency,
		BuyRate:  q.buyRate,
		SellRate: q.sellRate,
		Source:   q.source,
	})
}

func (q *Quote) UnmarshalJSON(b []byte) error {
	var raw quoteJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	parsed, err := New(raw.Date, raw.Currency, raw.BuyRate, raw.SellRate, raw.Source)
	if err != nil {
		return err
	}

	*q = parsed

	return nil
}
