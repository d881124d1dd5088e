package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sig-0/ptax/quote"
)

// scheduledIngest is a single scheduled Provider ingest job
type scheduledIngest struct {
	at         time.Time
	provider   Provider
	providerID xid.ID
}

// Less is utilized to sort scheduled ingests by their due-time (earliest == first)
func (a scheduledIngest) Less(b scheduledIngest) bool {
	return a.at.Before(b.at)
}

// workerInfo is the work context for the provider routine
type workerInfo struct {
	provider   Provider
	resCh      chan<- *workerResponse
	providerID xid.ID
}

// workerResponse is the provider routine response
type workerResponse struct {
	error      error         // encountered error, if any
	quotes     []quote.Quote // the fetched quotes
	providerID xid.ID        // the provider ID
}

// handleJob fetches using the provider
func handleJob(
	ctx context.Context,
	info *workerInfo,
) {
	response := &workerResponse{
		providerID: info.providerID,
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				response.error = fmt.Errorf("provider panicked: %v", r)
			}
		}()

		response.quotes, response.error = info.provider.Fetch(ctx)
	}()

	select {
	case <-ctx.Done():
	case info.resCh <- response:
	}
}
