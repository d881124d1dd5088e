package fallback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/session"
)

var (
	errNoQuotes       = errors.New("strategy returned no quotes")
	errStrategyPanic  = errors.New("strategy panicked")
	errMissingDefault = errors.New("missing default quote")
)

// State is the acquisition state of a single currency
type State int

const (
	StatePending State = iota
	StateTrying
	StateSucceeded
	StateDefaulted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateTrying:
		return "TRYING"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateDefaulted:
		return "DEFAULTED"
	default:
		return "UNKNOWN"
	}
}

// Attempt is the outcome of a single strategy run
type Attempt struct {
	Err      error
	Strategy string
	Origin   string
	Stage    int
	Quotes   int
}

// Cycle is the outcome of a single currency acquisition cycle
type Cycle struct {
	Currency quote.Currency
	Quotes   []quote.Quote
	Attempts []Attempt
	State    State
}

// Orchestrator runs the stages of a currency chain in priority order,
// stopping at the first stage that yields quotes. On exhaustion it
// synthesizes the configured default quote, so every cycle terminates
// in either StateSucceeded or StateDefaulted
type Orchestrator struct {
	logger *slog.Logger
	now    func() time.Time

	defaults      Defaults
	defaultSource string
}

// NewOrchestrator creates a new fallback orchestrator.
// The defaults must hold a valid pair for every supported currency
func NewOrchestrator(defaults Defaults, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           func() time.Time { return time.Now().In(saoPauloLocation()) },
		defaults:      defaults,
		defaultSource: "default",
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	for _, c := range quote.Currencies() {
		pair, ok := defaults[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingDefault, c)
		}

		if _, err := quote.New(quote.FormatDate(o.now()), c, pair.Buy, pair.Sell, o.defaultSource); err != nil {
			return nil, fmt.Errorf("invalid default quote for %s: %w", c, err)
		}
	}

	return o, nil
}

// Run executes a full acquisition cycle for the chain's currency
func (o *Orchestrator) Run(ctx context.Context, chain Chain, sess *session.Session) Cycle {
	cycle := Cycle{
		Currency: chain.Currency,
		State:    StatePending,
	}

	for i, stage := range chain.Stages {
		cycle.State = StateTrying

		var stageQuotes []quote.Quote

		// Every member of the stage runs, their quotes are all retained
		for _, strategy := range stage {
			quotes, err := o.attempt(ctx, strategy, chain.Currency, sess)

			cycle.Attempts = append(cycle.Attempts, Attempt{
				Err:      err,
				Strategy: strategy.Name(),
				Origin:   strategy.Origin(),
				Stage:    i,
				Quotes:   len(quotes),
			})

			if err != nil {
				o.logger.Warn(
					"strategy failed",
					"currency", chain.Currency,
					"strategy", strategy.Name(),
					"origin", strategy.Origin(),
					"err", err,
				)

				continue
			}

			for _, q := range quotes {
				o.logger.Info(
					"quote extracted",
					"currency", q.Currency(),
					"strategy", strategy.Name(),
					"date", q.Date(),
					"buy_rate", q.BuyRate(),
					"sell_rate", q.SellRate(),
				)
			}

			stageQuotes = append(stageQuotes, quotes...)
		}

		if len(stageQuotes) == 0 {
			continue
		}

		if len(stageQuotes) > 1 {
			o.logger.Warn(
				"multiple quotes retained for currency",
				"currency", chain.Currency,
				"count", len(stageQuotes),
			)
		}

		cycle.Quotes = stageQuotes
		cycle.State = StateSucceeded

		return cycle
	}

	cycle.Quotes = []quote.Quote{o.defaultQuote(chain.Currency)}
	cycle.State = StateDefaulted

	o.logger.Warn(
		"all strategies exhausted, using default quote",
		"currency", chain.Currency,
		"attempts", len(cycle.Attempts),
	)

	return cycle
}

// attempt runs a single strategy, turning panics and empty results into
// failures and dropping quotes for other currencies
func (o *Orchestrator) attempt(
	ctx context.Context,
	strategy Strategy,
	currency quote.Currency,
	sess *session.Session,
) (quotes []quote.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			quotes = nil
			err = fmt.Errorf("%w: %v", errStrategyPanic, r)
		}
	}()

	extracted, err := strategy.Attempt(ctx, currency, sess)
	if err != nil {
		return nil, err
	}

	for _, q := range extracted {
		if q.Currency() != currency {
			o.logger.Warn(
				"dropping quote for another currency",
				"strategy", strategy.Name(),
				"expected", currency,
				"got", q.Currency(),
			)

			continue
		}

		quotes = append(quotes, q)
	}

	if len(quotes) == 0 {
		return nil, errNoQuotes
	}

	return quotes, nil
}

// defaultQuote synthesizes the placeholder quote for today.
// The pair was validated on construction
func (o *Orchestrator) defaultQuote(currency quote.Currency) quote.Quote {
	pair := o.defaults[currency]

	q, _ := quote.New(quote.FormatDate(o.now()), currency, pair.Buy, pair.Sell, o.defaultSource)

	return q
}

func saoPauloLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err == nil {
		return loc
	}

	return time.FixedZone("BRT", -3*60*60)
}
