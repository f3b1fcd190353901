package connpass

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// EventsService handles communication with the event related methods of the
// connpass API.
type EventsService service

// Search returns one page of events matching opts.
//
// When both YMDFrom and YMDTo are set, the range is also sent as the list of
// days it covers, capped at 366 days.
func (s *EventsService) Search(ctx context.Context, opts *EventSearchOptions) (*EventsResponse, *Response, error) {
	if opts == nil {
		opts = &EventSearchOptions{}
	}
	if err := validateEventSearch(opts); err != nil {
		return nil, nil, err
	}

	u, err := addOptions("events/", eventQuery(opts))
	if err != nil {
		return nil, nil, err
	}

	return s.client.getEvents(ctx, u)
}

// SearchAll follows pagination until every event matching opts has been
// fetched. opts.Start and opts.Count are ignored.
func (s *EventsService) SearchAll(ctx context.Context, opts *EventSearchOptions) (*EventsResponse, error) {
	if opts == nil {
		opts = &EventSearchOptions{}
	}
	if err := validateEventSearch(opts); err != nil {
		return nil, err
	}

	all, err := collectAll(ctx, s.client.pagePause, func(ctx context.Context, lo ListOptions) (pageResult[Event], error) {
		o := *opts
		o.ListOptions = lo
		r, _, err := s.Search(ctx, &o)
		if err != nil {
			return pageResult[Event]{}, err
		}
		return pageResult[Event]{Items: r.Events, Returned: r.Returned, Available: r.Available, Start: r.Start}, nil
	})
	if err != nil {
		return nil, err
	}
	return &EventsResponse{Returned: all.Returned, Available: all.Available, Start: all.Start, Events: all.Items}, nil
}

// Presentations returns the presentations of an event. Responses are served
// from the client's presentation cache when present there.
func (s *EventsService) Presentations(ctx context.Context, eventID int) (*PresentationsResponse, error) {
	if eventID <= 0 {
		return nil, invalid("event_id", "eventId must be a positive integer")
	}

	logger := s.client.logger.With(slog.Int("event_id", eventID))
	cache := s.client.presentations

	cached, ok, err := cache.Get(ctx, eventID)
	if err != nil {
		logger.WarnContext(ctx, "presentation cache read failed", slog.String("error", err.Error()))
	} else if ok {
		return cached, nil
	}

	u := fmt.Sprintf("events/%d/presentations/", eventID)
	req, err := s.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var raw wirePresentationsResponse
	if _, err := s.client.Do(ctx, req, &raw); err != nil {
		return nil, err
	}
	result := raw.normalize()

	if err := cache.Set(ctx, eventID, result); err != nil {
		logger.WarnContext(ctx, "presentation cache write failed", slog.String("error", err.Error()))
	}
	return result, nil
}

// AttachPresentations fetches the presentations of every event and returns
// the events paired with them, in the original order. It fails as a whole if
// any lookup fails.
func (s *EventsService) AttachPresentations(ctx context.Context, events []Event) ([]EventWithPresentations, error) {
	out := make([]EventWithPresentations, len(events))
	g, gctx := errgroup.WithContext(ctx)
	for i, event := range events {
		out[i].Event = event
		g.Go(func() error {
			p, err := s.Presentations(gctx, event.ID)
			if err != nil {
				return fmt.Errorf("presentations for event %d: %w", event.ID, err)
			}
			out[i].Presentations = p.Presentations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getEvents(ctx context.Context, u string) (*EventsResponse, *Response, error) {
	req, err := c.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}

	var raw wireEventsResponse
	resp, err := c.Do(ctx, req, &raw)
	if err != nil {
		return nil, resp, err
	}
	return raw.normalize(), resp, nil
}
