package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/sig-0/ptax/quote"
	serverconfig "github.com/sig-0/ptax/server/config"
)

// Strategy kinds
const (
	KindAPI      = "api"
	KindHTML     = "html"
	KindRendered = "rendered"
)

const (
	DefaultOutputPath    = "cotacoes_ptax.csv"
	DefaultSource        = "default"
	DefaultClosingMarker = "Fechamento"
)

var (
	ErrInvalidOutputPath = errors.New("invalid output path")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidStrategy   = errors.New("invalid strategy")
	ErrInvalidChain      = errors.New("invalid chain")
	ErrInvalidDefault    = errors.New("invalid default quote")
	ErrMissingDefault    = errors.New("missing default quote")
	ErrInvalidWindow     = errors.New("invalid window size")
)

// Config is the run configuration
type Config struct {
	// The tabular output file, replaced on every run
	OutputPath string `toml:"output_path"`

	// The provenance recorded on synthesized default quotes
	DefaultSource string `toml:"default_source"`

	HTTP     HTTP     `toml:"http"`
	Render   Render   `toml:"render"`
	Schedule Schedule `toml:"schedule"`

	// The serve-mode quote API
	Server *serverconfig.Config `toml:"server"`

	// Named extraction strategies, referenced by the chains
	Strategies []Strategy `toml:"strategies"`

	// The currency -> ordered stage table
	Chains []Chain `toml:"chains"`

	// The placeholder rate pair per currency, used on exhaustion
	Defaults []DefaultQuote `toml:"defaults"`
}

// HTTP configures the session HTTP client
type HTTP struct {
	Timeout        string `toml:"timeout"`
	UserAgent      string `toml:"user_agent"`
	Accept         string `toml:"accept"`
	AcceptLanguage string `toml:"accept_language"`
	RetryCount     int    `toml:"retry_count"`
}

// Render configures the headless browser
type Render struct {
	WaitTimeout  string `toml:"wait_timeout"`
	SettleDelay  string `toml:"settle_delay"`
	WindowWidth  int    `toml:"window_width"`
	WindowHeight int    `toml:"window_height"`
	Enabled      bool   `toml:"enabled"`
}

// Schedule configures the serve-mode run interval
type Schedule struct {
	Interval string `toml:"interval"`
}

// Strategy is a single named extraction strategy
type Strategy struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	URL  string `toml:"url"`

	// Quotation type kept by the api kind
	ClosingMarker string `toml:"closing_marker"`

	// Table selector for the html kind. Empty means
	// table[summary], then the first table
	TableSelector string `toml:"table_selector"`

	// Row marker for the rendered kind. Empty means the currency name
	Marker string `toml:"marker"`
}

// Chain is the ordered strategy stages for a single currency
type Chain struct {
	Currency string  `toml:"currency"`
	Stages   []Stage `toml:"stages"`
}

// Stage is a family of strategies that all run when the stage is reached
type Stage struct {
	Strategies []string `toml:"strategies"`
}

// DefaultQuote is the placeholder rate pair for a currency
type DefaultQuote struct {
	Currency string `toml:"currency"`
	BuyRate  string `toml:"buy_rate"`
	SellRate string `toml:"sell_rate"`
}

// DefaultConfig returns the default run configuration
func DefaultConfig() *Config {
	return &Config{
		OutputPath:    DefaultOutputPath,
		DefaultSource: DefaultSource,
		HTTP: HTTP{
			Timeout: "30s",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			Accept: "text/html,application/xhtml+xml,application/xml;q=0.9," +
				"image/avif,image/webp,image/apng,*/*;q=0.8",
			AcceptLanguage: "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
			RetryCount:     2,
		},
		Render: Render{
			Enabled:      true,
			WaitTimeout:  "10s",
			SettleDelay:  "5s",
			WindowWidth:  1920,
			WindowHeight: 1080,
		},
		Schedule: Schedule{
			Interval: "24h",
		},
		Server: serverconfig.DefaultConfig(),
		Strategies: []Strategy{
			{
				Name:          "bcb-api",
				Kind:          KindAPI,
				URL:           "https://www.bcb.gov.br/api/servico/sitebcb/indicadorCambio",
				ClosingMarker: DefaultClosingMarker,
			},
			{
				Name: "ptax-usd",
				Kind: KindHTML,
				URL:  "https://ptax.bcb.gov.br/ptax_internet/consultarUltimaCotacaoDolar.do",
			},
			{
				Name: "bcb-home",
				Kind: KindRendered,
				URL:  "https://www.bcb.gov.br/",
			},
		},
		Chains: []Chain{
			{
				Currency: quote.USD.String(),
				Stages: []Stage{
					{Strategies: []string{"bcb-api"}},
					{Strategies: []string{"ptax-usd", "bcb-home"}},
				},
			},
			{
				Currency: quote.EUR.String(),
				Stages: []Stage{
					{Strategies: []string{"bcb-api"}},
					{Strategies: []string{"bcb-home"}},
				},
			},
		},
		Defaults: []DefaultQuote{
			{Currency: quote.USD.String(), BuyRate: "5.4000", SellRate: "5.4006"},
			{Currency: quote.EUR.String(), BuyRate: "6.2000", SellRate: "6.2032"},
		},
	}
}

// ValidateConfig validates the run configuration
func ValidateConfig(config *Config) error {
	if config.OutputPath == "" {
		return ErrInvalidOutputPath
	}

	if config.Server != nil {
		if err := serverconfig.ValidateConfig(config.Server); err != nil {
			return fmt.Errorf("invalid server configuration: %w", err)
		}
	}

	for name, d := range map[string]string{
		"http.timeout":        config.HTTP.Timeout,
		"render.wait_timeout": config.Render.WaitTimeout,
		"render.settle_delay": config.Render.SettleDelay,
		"schedule.interval":   config.Schedule.Interval,
	} {
		if _, err := parseDuration(d); err != nil {
			return fmt.Errorf("%w: %s, %w", ErrInvalidDuration, name, err)
		}
	}

	if config.Render.Enabled && (config.Render.WindowWidth <= 0 || config.Render.WindowHeight <= 0) {
		return ErrInvalidWindow
	}

	strategies := make(map[string]struct{}, len(config.Strategies))

	for _, s := range config.Strategies {
		if err := validateStrategy(s); err != nil {
			return err
		}

		if _, exists := strategies[s.Name]; exists {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidStrategy, s.Name)
		}

		strategies[s.Name] = struct{}{}
	}

	defaults := make(map[quote.Currency]struct{}, len(config.Defaults))

	for _, d := range config.Defaults {
		c, err := quote.ParseCurrency(d.Currency)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDefault, err)
		}

		if _, err := quote.NormalizeRate(d.BuyRate); err != nil {
			return fmt.Errorf("%w: %s buy rate, %w", ErrInvalidDefault, c, err)
		}

		if _, err := quote.NormalizeRate(d.SellRate); err != nil {
			return fmt.Errorf("%w: %s sell rate, %w", ErrInvalidDefault, c, err)
		}

		defaults[c] = struct{}{}
	}

	seen := make(map[quote.Currency]struct{}, len(config.Chains))

	for _, chain := range config.Chains {
		c, err := quote.ParseCurrency(chain.Currency)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidChain, err)
		}

		if _, exists := seen[c]; exists {
			return fmt.Errorf("%w: duplicate chain for %s", ErrInvalidChain, c)
		}

		seen[c] = struct{}{}

		for i, stage := range chain.Stages {
			if len(stage.Strategies) == 0 {
				return fmt.Errorf("%w: %s stage %d is empty", ErrInvalidChain, c, i)
			}

			for _, name := range stage.Strategies {
				if _, ok := strategies[name]; !ok {
					return fmt.Errorf("%w: %s references unknown strategy %q", ErrInvalidChain, c, name)
				}
			}
		}
	}

	// Every currency needs a placeholder, the pipeline always emits one
	for _, c := range quote.Currencies() {
		if _, ok := defaults[c]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingDefault, c)
		}
	}

	return nil
}

func validateStrategy(s Strategy) error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidStrategy)
	}

	switch s.Kind {
	case KindAPI, KindHTML, KindRendered:
	default:
		return fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidStrategy, s.Name, s.Kind)
	}

	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q has invalid url %q", ErrInvalidStrategy, s.Name, s.URL)
	}

	return nil
}

// Strategy returns the named strategy, if any
func (c *Config) Strategy(name string) (Strategy, bool) {
	for _, s := range c.Strategies {
		if s.Name == name {
			return s, true
		}
	}

	return Strategy{}, false
}

// DefaultFor returns the placeholder quote for the currency, if any
func (c *Config) DefaultFor(currency quote.Currency) (DefaultQuote, bool) {
	for _, d := range c.Defaults {
		if parsed, err := quote.ParseCurrency(d.Currency); err == nil && parsed == currency {
			return d, true
		}
	}

	return DefaultQuote{}, false
}

// TimeoutDuration returns the per-request HTTP timeout
func (h HTTP) TimeoutDuration() time.Duration {
	return mustDuration(h.Timeout)
}

// WaitTimeoutDuration returns the bound on the document-ready wait
func (r Render) WaitTimeoutDuration() time.Duration {
	return mustDuration(r.WaitTimeout)
}

// SettleDelayDuration returns the fixed delay after the document is ready
func (r Render) SettleDelayDuration() time.Duration {
	return mustDuration(r.SettleDelay)
}

// IntervalDuration returns the serve-mode run interval
func (s Schedule) IntervalDuration() time.Duration {
	return mustDuration(s.Interval)
}

// Read reads the configuration from the given path,
// on top of the default configuration
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	cfg := DefaultConfig()

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}

	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}

	return d, nil
}

// mustDuration is only called on validated configuration
func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)

	return d
}
