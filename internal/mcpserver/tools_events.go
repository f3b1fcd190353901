package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lujin3/go-connpass/connpass"
)

const (
	defaultDaysAhead = 7
	defaultMaxEvents = 30
)

var errNoUser = errors.New("User ID or nickname is required. Pass 'userId', 'nickname', or set CONNPASS_DEFAULT_USER_ID in the environment.")

// SearchEventsInput are the arguments of search_events.
type SearchEventsInput struct {
	Query               string   `json:"query,omitempty" jsonschema:"All keywords that must appear in the event title / description"`
	AnyQuery            string   `json:"anyQuery,omitempty" jsonschema:"Any of these keywords may match (OR search, comma separated is ok)"`
	On                  []string `json:"on,omitempty" jsonschema:"Specific dates in YYYY-MM-DD or YYYYMMDD format (e.g. '2024-12-24' or '20241224'). today, tomorrow and yesterday are understood too"`
	From                string   `json:"from,omitempty" jsonschema:"Inclusive start date in YYYY-MM-DD or YYYYMMDD format (e.g. '2024-12-01')"`
	To                  string   `json:"to,omitempty" jsonschema:"Inclusive end date in YYYY-MM-DD or YYYYMMDD format for the date range"`
	ParticipantNickname string   `json:"participantNickname,omitempty" jsonschema:"Limit to events joined by this participant nickname"`
	HostNickname        string   `json:"hostNickname,omitempty" jsonschema:"Filter by the host / organiser nickname"`
	GroupIDs            []int    `json:"groupIds,omitempty" jsonschema:"Only show events from these Connpass group IDs"`
	Prefectures         []string `json:"prefectures,omitempty" jsonschema:"Prefecture names to match"`
	Page                int      `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize            int      `json:"pageSize,omitempty" jsonschema:"How many events per page (default 20, Connpass max 100)"`
	Sort                string   `json:"sort,omitempty" jsonschema:"Sort by soonest, latest, or newly created events"`
}

// EventPresentationsInput are the arguments of get_event_presentations.
type EventPresentationsInput struct {
	EventID json.Number `json:"eventId" jsonschema:"Connpass event ID (either number or numeric string)"`
}

// UpcomingEventsInput are the arguments of get_my_upcoming_events.
type UpcomingEventsInput struct {
	UserID               int    `json:"userId,omitempty" jsonschema:"Connpass user ID to inspect. Falls back to CONNPASS_DEFAULT_USER_ID"`
	Nickname             string `json:"nickname,omitempty" jsonschema:"Connpass user nickname. If specified, searches for the user by this nickname"`
	DaysAhead            int    `json:"daysAhead,omitempty" jsonschema:"Include events up to this many days ahead (default 7)"`
	MaxEvents            int    `json:"maxEvents,omitempty" jsonschema:"Maximum attended events to check (default 30)"`
	IncludePresentations *bool  `json:"includePresentations,omitempty" jsonschema:"If true, also fetch presentation details for each event (extra API calls, rate-limited)"`
}

type upcomingDay struct {
	Date   string           `json:"date"`
	Events []formattedEvent `json:"events"`
}

type upcomingRange struct {
	RangeEnd string           `json:"rangeEnd"`
	Events   []formattedEvent `json:"events"`
}

type upcomingMetadata struct {
	Inspected            int  `json:"inspected"`
	Limit                int  `json:"limit"`
	DaysAhead            int  `json:"daysAhead"`
	IncludePresentations bool `json:"includePresentations"`
}

type upcomingEvents struct {
	UserID   int              `json:"userId"`
	Today    upcomingDay      `json:"today"`
	Upcoming upcomingRange    `json:"upcoming"`
	Metadata upcomingMetadata `json:"metadata"`
}

func (s *Server) addEventTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_events",
		Description: "Find Connpass events using date filters and simple search criteria",
		InputSchema: inputSchema[SearchEventsInput](map[string][]propertyRule{
			"page":     {atLeast(1)},
			"pageSize": {between(1, 100)},
			"sort":     {oneOf(eventSortKeys)},
			"groupIds": {positiveItems()},
		}),
		Meta: eventsToolMeta(),
	}, handle(s, "search_events", s.searchEvents))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_event_presentations",
		Description: "Look up presentation details for a specific event",
		InputSchema: inputSchema[EventPresentationsInput](map[string][]propertyRule{
			"eventId": {integerOrString()},
		}),
	}, handle(s, "get_event_presentations", s.eventPresentations))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_my_upcoming_events",
		Description: "Get today's and upcoming events for the default or specified user",
		InputSchema: inputSchema[UpcomingEventsInput](map[string][]propertyRule{
			"userId":    {atLeast(1)},
			"daysAhead": {between(1, 60)},
			"maxEvents": {between(1, 100)},
		}),
		Meta: eventsToolMeta(),
	}, handle(s, "get_my_upcoming_events", s.upcomingEvents))
}

// eventFormat is the formatting applied to event results. Apps SDK clients
// render full descriptions themselves.
func (s *Server) eventFormat() formatOptions {
	opts := formatOptions{description: descriptionLimit, catchPhrase: catchPhraseLimit}
	if s.cfg.AppsSDKOutput.Bool() {
		opts.description = 0
	}
	return opts
}

func (s *Server) searchEvents(ctx context.Context, in SearchEventsInput) (any, error) {
	order, err := sortOrder(eventSort, in.Sort)
	if err != nil {
		return nil, err
	}
	now := s.now()

	opts := &connpass.EventSearchOptions{
		Keyword:       keyword(in.Query),
		KeywordOr:     keyword(in.AnyQuery),
		Nickname:      strings.TrimSpace(in.ParticipantNickname),
		OwnerNickname: strings.TrimSpace(in.HostNickname),
		GroupID:       in.GroupIDs,
		Prefecture:    in.Prefectures,
		Order:         order,
		ListOptions:   pagination(in.Page, in.PageSize),
	}
	if opts.YMD, err = compactDates(in.On, now); err != nil {
		return nil, err
	}
	if opts.YMDFrom, err = hyphenatedDate(in.From, now); err != nil {
		return nil, err
	}
	if opts.YMDTo, err = hyphenatedDate(in.To, now); err != nil {
		return nil, err
	}

	resp, _, err := s.client.Events.Search(ctx, opts)
	if err != nil {
		return nil, err
	}
	return formatEvents(resp, s.eventFormat()), nil
}

func (s *Server) eventPresentations(ctx context.Context, in EventPresentationsInput) (any, error) {
	id, err := strconv.Atoi(strings.TrimSpace(in.EventID.String()))
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("eventId must be a positive integer, got %q", in.EventID.String())
	}
	resp, err := s.client.Events.Presentations(ctx, id)
	if err != nil {
		return nil, err
	}
	return formatPresentations(resp, s.eventFormat()), nil
}

func (s *Server) upcomingEvents(ctx context.Context, in UpcomingEventsInput) (any, error) {
	userID := in.UserID
	if userID == 0 {
		userID = s.cfg.DefaultUserID
	}

	var nickname string
	if n := strings.TrimSpace(in.Nickname); n != "" {
		found, _, err := s.client.Users.Search(ctx, &connpass.UserSearchOptions{Nickname: []string{n}})
		if err != nil {
			return nil, err
		}
		if len(found.Users) == 0 {
			return nil, fmt.Errorf("User with nickname %q not found.", n)
		}
		userID = found.Users[0].ID
		nickname = found.Users[0].Nickname
	}
	if userID <= 0 {
		return nil, errNoUser
	}
	if nickname == "" {
		var err error
		if nickname, err = s.client.Users.ResolveNickname(ctx, connpass.UserID(userID)); err != nil {
			return nil, err
		}
	}

	daysAhead := in.DaysAhead
	if daysAhead == 0 {
		daysAhead = defaultDaysAhead
	}
	maxEvents := in.MaxEvents
	if maxEvents == 0 {
		maxEvents = defaultMaxEvents
	}
	includePresentations := s.cfg.IncludePresentationsDefault.Bool()
	if in.IncludePresentations != nil {
		includePresentations = *in.IncludePresentations
	}

	now := s.now()
	today := startOfDay(now)
	rangeEnd := today.AddDate(0, 0, daysAhead)

	resp, _, err := s.client.Events.Search(ctx, &connpass.EventSearchOptions{
		Nickname:    nickname,
		YMDFrom:     today.Format(time.DateOnly),
		YMDTo:       rangeEnd.Format(time.DateOnly),
		Order:       connpass.OrderStartedAtAsc,
		ListOptions: connpass.ListOptions{Count: maxEvents},
	})
	if err != nil {
		return nil, err
	}

	var todays, later []connpass.Event
	for _, e := range resp.Events {
		started, err := time.Parse(time.RFC3339, e.StartedAt)
		if err == nil && sameDay(started.In(now.Location()), today) {
			todays = append(todays, e)
		} else {
			later = append(later, e)
		}
	}

	todayWith, err := s.withPresentations(ctx, todays, includePresentations)
	if err != nil {
		return nil, err
	}
	laterWith, err := s.withPresentations(ctx, later, includePresentations)
	if err != nil {
		return nil, err
	}

	format := s.eventFormat()
	return upcomingEvents{
		UserID: userID,
		Today: upcomingDay{
			Date:   today.Format(time.DateOnly),
			Events: formatEventList(todayWith, format),
		},
		Upcoming: upcomingRange{
			RangeEnd: rangeEnd.Format(time.DateOnly),
			Events:   formatEventList(laterWith, format),
		},
		Metadata: upcomingMetadata{
			Inspected:            resp.Returned,
			Limit:                maxEvents,
			DaysAhead:            daysAhead,
			IncludePresentations: includePresentations,
		},
	}, nil
}

func (s *Server) withPresentations(ctx context.Context, events []connpass.Event, include bool) ([]connpass.EventWithPresentations, error) {
	if !include || len(events) == 0 {
		out := make([]connpass.EventWithPresentations, len(events))
		for i, e := range events {
			out[i].Event = e
		}
		return out, nil
	}
	return s.client.Events.AttachPresentations(ctx, events)
}
