package fallback

import (
	"sync"

	"github.com/sig-0/ptax/quote"
)

// Collector accumulates the quotes of a single run, in arrival order
type Collector struct {
	quotes []quote.Quote
	mux    sync.Mutex
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends the quotes to the collection
func (c *Collector) Add(quotes ...quote.Quote) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.quotes = append(c.quotes, quotes...)
}

// Quotes returns a copy of the collected quotes
func (c *Collector) Quotes() []quote.Quote {
	c.mux.Lock()
	defer c.mux.Unlock()

	out := make([]quote.Quote, len(c.quotes))
	copy(out, c.quotes)

	return out
}

// HasData returns whether any quote was collected
func (c *Collector) HasData() bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	return len(c.quotes) > 0
}
