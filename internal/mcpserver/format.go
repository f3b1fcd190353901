package mcpserver

import (
	"strings"

	"github.com/lujin3/go-connpass/connpass"
	"github.com/lujin3/go-connpass/internal/textfmt"
)

const (
	descriptionLimit = 300
	catchPhraseLimit = 150
)

// formatOptions bounds the text fields of formatted output. Zero means no
// limit.
type formatOptions struct {
	description             int
	catchPhrase             int
	presentationDescription int
}

type formattedPresentation struct {
	ID        int                `json:"id"`
	Title     string             `json:"title"`
	Speaker   string             `json:"speaker"`
	Summary   string             `json:"summary,omitempty"`
	Links     *presentationLinks `json:"links,omitempty"`
	Order     int                `json:"order"`
	UpdatedAt string             `json:"updatedAt"`
}

type presentationLinks struct {
	URL        string `json:"url,omitempty"`
	Slideshare string `json:"slideshare,omitempty"`
	Youtube    string `json:"youtube,omitempty"`
	Twitter    string `json:"twitter,omitempty"`
}

type formattedEvent struct {
	ID            int                     `json:"id"`
	Title         string                  `json:"title"`
	CatchPhrase   string                  `json:"catchPhrase,omitempty"`
	Summary       string                  `json:"summary,omitempty"`
	URL           string                  `json:"url"`
	HashTag       string                  `json:"hashTag,omitempty"`
	ImageURL      string                  `json:"imageUrl,omitempty"`
	Schedule      eventSchedule           `json:"schedule"`
	Location      *eventLocation          `json:"location,omitempty"`
	Owner         eventOwner              `json:"owner"`
	Participants  eventParticipants       `json:"participants"`
	Group         *eventGroup             `json:"group,omitempty"`
	UpdatedAt     string                  `json:"updatedAt"`
	Presentations []formattedPresentation `json:"presentations,omitempty"`
}

type eventSchedule struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type eventLocation struct {
	Place   string `json:"place,omitempty"`
	Address string `json:"address,omitempty"`
}

type eventOwner struct {
	Nickname    string `json:"nickname"`
	DisplayName string `json:"displayName"`
}

type eventParticipants struct {
	Accepted int  `json:"accepted"`
	Waiting  int  `json:"waiting"`
	Limit    *int `json:"limit,omitempty"`
}

type eventGroup struct {
	ID    *int   `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

type formattedEventsResponse struct {
	Returned  int              `json:"returned"`
	Available int              `json:"available"`
	Start     int              `json:"start"`
	Events    []formattedEvent `json:"events"`
}

type formattedPresentationsResponse struct {
	Returned      int                     `json:"returned"`
	Presentations []formattedPresentation `json:"presentations"`
}

func formatPresentation(p connpass.Presentation, limit int) formattedPresentation {
	out := formattedPresentation{
		ID:        p.ID,
		Title:     strings.TrimSpace(p.Title),
		Speaker:   p.SpeakerName,
		Summary:   textfmt.Truncate(textfmt.Sanitize(p.Description), limit),
		Order:     p.Order,
		UpdatedAt: p.UpdatedAt,
	}
	links := presentationLinks{
		URL:        connpass.StringValue(p.URL),
		Slideshare: connpass.StringValue(p.SlideshareURL),
		Youtube:    connpass.StringValue(p.YoutubeURL),
		Twitter:    connpass.StringValue(p.TwitterURL),
	}
	if links != (presentationLinks{}) {
		out.Links = &links
	}
	return out
}

func formatPresentations(resp *connpass.PresentationsResponse, opts formatOptions) formattedPresentationsResponse {
	out := formattedPresentationsResponse{
		Returned:      resp.Returned,
		Presentations: make([]formattedPresentation, 0, len(resp.Presentations)),
	}
	for _, p := range resp.Presentations {
		out.Presentations = append(out.Presentations, formatPresentation(p, opts.presentationDescription))
	}
	return out
}

func formatEvent(e connpass.Event, presentations []connpass.Presentation, opts formatOptions) formattedEvent {
	out := formattedEvent{
		ID:          e.ID,
		Title:       strings.TrimSpace(e.Title),
		CatchPhrase: textfmt.Truncate(textfmt.Sanitize(e.CatchPhrase), opts.catchPhrase),
		Summary:     textfmt.Truncate(textfmt.Sanitize(e.Description), opts.description),
		URL:         e.URL,
		HashTag:     e.HashTag,
		ImageURL:    connpass.StringValue(e.ImageURL),
		Schedule:    eventSchedule{Start: e.StartedAt, End: e.EndedAt},
		Owner:       eventOwner{Nickname: e.OwnerNickname, DisplayName: e.OwnerDisplayName},
		Participants: eventParticipants{
			Accepted: e.ParticipantCount,
			Waiting:  e.WaitingCount,
			Limit:    e.Limit,
		},
		UpdatedAt: e.UpdatedAt,
	}

	if place, address := connpass.StringValue(e.Place), connpass.StringValue(e.Address); place != "" || address != "" {
		out.Location = &eventLocation{Place: place, Address: address}
	}
	if e.GroupID != nil || e.GroupTitle != nil || e.GroupURL != nil {
		out.Group = &eventGroup{
			ID:    e.GroupID,
			Title: connpass.StringValue(e.GroupTitle),
			URL:   connpass.StringValue(e.GroupURL),
		}
	}
	for _, p := range presentations {
		out.Presentations = append(out.Presentations, formatPresentation(p, opts.presentationDescription))
	}
	return out
}

func formatEvents(resp *connpass.EventsResponse, opts formatOptions) formattedEventsResponse {
	out := formattedEventsResponse{
		Returned:  resp.Returned,
		Available: resp.Available,
		Start:     resp.Start,
		Events:    make([]formattedEvent, 0, len(resp.Events)),
	}
	for _, e := range resp.Events {
		out.Events = append(out.Events, formatEvent(e, nil, opts))
	}
	return out
}

func formatEventList(events []connpass.EventWithPresentations, opts formatOptions) []formattedEvent {
	out := make([]formattedEvent, 0, len(events))
	for _, e := range events {
		out = append(out, formatEvent(e.Event, e.Presentations, opts))
	}
	return out
}
