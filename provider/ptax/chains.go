package ptax

import (
	"errors"
	"fmt"

	"github.com/sig-0/ptax/config"
	"github.com/sig-0/ptax/fallback"
	"github.com/sig-0/ptax/quote"
)

var errUnknownStrategy = errors.New("unknown strategy")

// NewStrategy creates the strategy described by the configuration entry
func NewStrategy(s config.Strategy) (fallback.Strategy, error) {
	switch s.Kind {
	case config.KindAPI:
		marker := s.ClosingMarker
		if marker == "" {
			marker = config.DefaultClosingMarker
		}

		return NewAPIStrategy(s.Name, s.URL, marker), nil
	case config.KindHTML:
		return NewDirectHTMLStrategy(s.Name, s.URL, s.TableSelector), nil
	case config.KindRendered:
		return NewRenderedDOMStrategy(s.Name, s.URL, s.Marker), nil
	default:
		return nil, fmt.Errorf("%w: kind %q", errUnknownStrategy, s.Kind)
	}
}

// Chains builds one chain per supported currency, in processing order.
// A currency without a configured chain gets an empty one, and is defaulted.
// Chains referencing the same strategy name share a single instance
func Chains(cfg *config.Config) ([]fallback.Chain, error) {
	built := make(map[string]fallback.Strategy, len(cfg.Strategies))

	resolve := func(name string) (fallback.Strategy, error) {
		if strategy, ok := built[name]; ok {
			return strategy, nil
		}

		s, ok := cfg.Strategy(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownStrategy, name)
		}

		strategy, err := NewStrategy(s)
		if err != nil {
			return nil, fmt.Errorf("unable to create strategy %q: %w", name, err)
		}

		built[name] = strategy

		return strategy, nil
	}

	configured := make(map[quote.Currency]config.Chain, len(cfg.Chains))

	for _, chain := range cfg.Chains {
		c, err := quote.ParseCurrency(chain.Currency)
		if err != nil {
			return nil, err
		}

		configured[c] = chain
	}

	chains := make([]fallback.Chain, 0, len(quote.Currencies()))

	for _, c := range quote.Currencies() {
		chain := fallback.Chain{
			Currency: c,
		}

		for _, stageCfg := range configured[c].Stages {
			stage := make(fallback.Stage, 0, len(stageCfg.Strategies))

			for _, name := range stageCfg.Strategies {
				strategy, err := resolve(name)
				if err != nil {
					return nil, err
				}

				stage = append(stage, strategy)
			}

			chain.Stages = append(chain.Stages, stage)
		}

		chains = append(chains, chain)
	}

	return chains, nil
}
