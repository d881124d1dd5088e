package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/sig-0/ptax/storage"
)

var (
	errInvalidProvider = errors.New("invalid provider")
	errInvalidInterval = errors.New("invalid interval")
)

// Scheduler is the main job scheduler for registered providers.
// Each provider run is persisted through the writer, and rescheduled
// after its interval (or the retry delay, on failure)
type Scheduler struct {
	writer storage.Writer
	logger *slog.Logger

	registeredProviders sync.Map

	q             iq.Queue[scheduledIngest]
	queryInterval time.Duration
	retryDelay    time.Duration
	qMux          sync.Mutex
}

// New creates a new Scheduler instance
func New(writer storage.Writer, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		writer:        writer,
		q:             iq.NewQueue[scheduledIngest](),
		queryInterval: time.Second, // every second
		retryDelay:    time.Second * 10,
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register registers a new provider with the scheduler.
// The provider is immediately queued up for execution
func (s *Scheduler) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return errInvalidProvider
	}

	if p.Interval() <= 0 {
		return errInvalidInterval
	}

	// Register the provider
	id := xid.New()
	s.registeredProviders.Store(id, p)

	s.logger.Info(
		"registered new provider",
		"name", p.Name(),
		"interval", p.Interval().String(),
	)

	// Schedule the job
	s.scheduleIngest(
		time.Now().UTC(),
		id,
		p,
	)

	return nil
}

// Start starts the provider scheduling service loop [BLOCKING]
func (s *Scheduler) Start(ctx context.Context) error {
	collectorCh := make(chan *workerResponse, 100)

	// Start a listener for monitoring jobs
	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	// handleIngest initializes all jobs that are executable (due)
	handleIngest := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				nextSI := s.nextIngest()
				if nextSI == nil {
					return // nothing to schedule anymore
				}

				s.logger.Info(
					"scheduling ingest",
					"name", nextSI.provider.Name(),
				)

				// Spawn worker
				info := &workerInfo{
					provider:   nextSI.provider,
					providerID: nextSI.providerID,
					resCh:      collectorCh,
				}

				go handleJob(ctx, info)
			}
		}
	}

	// Initialize the first set of due jobs (on boot)
	handleIngest()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler service shut down")

			return nil
		case <-ticker.C:
			handleIngest()
		case response := <-collectorCh:
			now := time.Now().UTC()

			rpRaw, ok := s.registeredProviders.Load(response.providerID)
			if !ok {
				s.logger.Error(
					"unable to load registered provider",
					"id", response.providerID.String(),
				)

				continue
			}

			rp, _ := rpRaw.(Provider)

			if response.error != nil {
				s.logger.Error(
					"error encountered during quote fetch",
					"id", response.providerID.String(),
					"name", rp.Name(),
					"err", response.error.Error(),
				)

				// Retry ingest job soon
				s.scheduleIngest(
					now.Add(s.retryDelay),
					response.providerID,
					rp,
				)

				continue
			}

			s.save(ctx, rp, response)

			// Schedule a new ingest for this provider
			s.scheduleIngest(
				now.Add(rp.Interval()),
				response.providerID,
				rp,
			)
		}
	}
}

// save persists the quotes of a single provider run, if any
func (s *Scheduler) save(ctx context.Context, p Provider, response *workerResponse) {
	if len(response.quotes) == 0 {
		s.logger.Warn(
			"provider yielded no quotes, skipping write",
			"name", p.Name(),
		)

		return
	}

	saveCtx, cancelFn := context.WithTimeout(ctx, time.Second*10)
	defer cancelFn()

	if err := s.writer.WriteQuotes(saveCtx, response.quotes); err != nil {
		s.logger.Error(
			"unable to save quotes",
			"name", p.Name(),
			"count", len(response.quotes),
			"err", err,
		)

		return
	}

	for _, q := range response.quotes {
		s.logger.Info(
			"saved quote",
			"currency", q.Currency(),
			"date", q.Date(),
			"buy_rate", q.BuyRate(),
			"sell_rate", q.SellRate(),
			"source", q.Source(),
		)
	}
}

// scheduleIngest schedules a new provider ingest
func (s *Scheduler) scheduleIngest(
	at time.Time,
	providerID xid.ID,
	provider Provider,
) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	futureSI := scheduledIngest{
		at:         at,
		providerID: providerID,
		provider:   provider,
	}

	s.q.Push(futureSI)
}

// nextIngest fetches the next due ingest job, as of the moment of calling
func (s *Scheduler) nextIngest() *scheduledIngest {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	now := time.Now().UTC()

	// Check if anything needs to be scheduled
	if s.q.Len() == 0 {
		return nil // nothing to schedule, all jobs are running
	}

	// Check if the top element is due
	if s.q.Index(0).at.After(now) {
		return nil // nothing to schedule, latest job is in the future
	}

	// Grab the next job
	return s.q.PopFront()
}
