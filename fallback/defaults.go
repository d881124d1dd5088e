package fallback

import (
	"fmt"

	"github.com/sig-0/ptax/config"
	"github.com/sig-0/ptax/quote"
)

// RatePair is a placeholder buy / sell rate pair
type RatePair struct {
	Buy  string
	Sell string
}

// Defaults is the currency -> placeholder rate pair table
type Defaults map[quote.Currency]RatePair

// DefaultsFromConfig builds the default table from the configuration.
// Every supported currency needs a placeholder quote
func DefaultsFromConfig(cfg *config.Config) (Defaults, error) {
	currencies := quote.Currencies()
	defaults := make(Defaults, len(currencies))

	for _, c := range currencies {
		d, ok := cfg.DefaultFor(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s", config.ErrMissingDefault, c)
		}

		defaults[c] = RatePair{
			Buy:  d.BuyRate,
			Sell: d.SellRate,
		}
	}

	return defaults, nil
}
