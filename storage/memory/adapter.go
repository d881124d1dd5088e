package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/storage/types"
)

type key struct {
	date, currency, source, buyRate, sellRate string
}

type entry struct {
	quote quote.Quote
	day   time.Time
	seq   uint64 // insertion order
}

type Storage struct {
	data map[key]entry
	seq  uint64

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[key]entry),
	}
}

func (s *Storage) WriteQuotes(_ context.Context, quotes []quote.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range quotes {
		k := key{
			date:     q.Date(),
			currency: q.Currency().String(),
			source:   q.Source(),
			buyRate:  q.BuyRate(),
			sellRate: q.SellRate(),
		}

		// Quote dates are validated on construction
		day, _ := time.Parse(quote.DateLayout, q.Date())

		s.seq++
		s.data[k] = entry{
			quote: q,
			day:   day,
			seq:   s.seq,
		}
	}

	return nil
}

func (s *Storage) Quotes(
	_ context.Context,
	query *types.QuoteQuery,
) (*types.Page[quote.Quote], error) {
	s.mu.RLock()

	matched := make([]entry, 0, len(s.data))

	for _, e := range s.data {
		if query.Currency != nil && e.quote.Currency() != *query.Currency {
			continue
		}

		if query.Source != nil && e.quote.Source() != *query.Source {
			continue
		}

		matched = append(matched, e)
	}

	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].day.Equal(matched[j].day) {
			return matched[i].day.After(matched[j].day)
		}

		if matched[i].quote.Currency() != matched[j].quote.Currency() {
			return matched[i].quote.Currency() < matched[j].quote.Currency()
		}

		return matched[i].seq < matched[j].seq
	})

	total := int64(len(matched))
	if total == 0 {
		return &types.Page[quote.Quote]{
			Results: nil,
			Total:   0,
		}, nil
	}

	lim := query.Limit
	if lim <= 0 {
		lim = 100
	}

	if lim > 500 {
		lim = 500
	}

	off := query.Offset
	if off < 0 || off > total {
		return &types.Page[quote.Quote]{
			Results: nil,
			Total:   total,
		}, nil
	}

	start := int(off)
	end := start + int(lim)

	if end > len(matched) {
		end = len(matched)
	}

	out := make([]quote.Quote, 0, end-start)
	for _, e := range matched[start:end] {
		out = append(out, e.quote)
	}

	return &types.Page[quote.Quote]{
		Results: out,
		Total:   total,
	}, nil
}

func (s *Storage) ListSources(_ context.Context) ([]string, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.data {
		seen[k.source] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]string, 0, len(seen))

	for v := range seen {
		out = append(out, v)
	}

	sort.Strings(out)

	return out, nil
}

func (s *Storage) ListCurrencies(_ context.Context) ([]quote.Currency, error) {
	s.mu.RLock()

	seen := make(map[quote.Currency]struct{})

	for _, e := range s.data {
		seen[e.quote.Currency()] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]quote.Currency, 0, len(seen))

	for v := range seen {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})

	return out, nil
}
