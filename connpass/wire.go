package connpass

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// The API has served both snake_case and camelCase payloads over time. The
// wire types below accept either spelling of every field; normalize methods
// fold them into the exported types.

// flexFloat decodes a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func first[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// firstString is like first but also skips empty strings, so a present but
// blank snake_case field does not hide its camelCase twin.
func firstString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

func floatPtr(f *flexFloat) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// wireEnvelope carries the paging counters. The reported returned count is
// not decoded: returned is always the number of entities actually received.
type wireEnvelope struct {
	ResultsAvailable *int `json:"results_available"`
	ResultsStart     *int `json:"results_start"`
}

func (w wireEnvelope) normalize(camelAvailable, camelStart *int, n int) (returned, available, start int) {
	returned = n
	available = value(first(w.ResultsAvailable, camelAvailable, &n))
	one := 1
	start = value(first(w.ResultsStart, camelStart, &one))
	return returned, available, start
}

type wireGroupRef struct {
	ID    *int    `json:"id"`
	Title *string `json:"title"`
	URL   *string `json:"url"`
}

type wireEvent struct {
	ID               *int          `json:"id"`
	EventID          *int          `json:"event_id"`
	Title            *string       `json:"title"`
	Catch            *string       `json:"catch"`
	CatchPhrase      *string       `json:"catchPhrase"`
	Description      *string       `json:"description"`
	URL              *string       `json:"url"`
	EventURL         *string       `json:"event_url"`
	ImageURLSnake    *string       `json:"image_url"`
	ImageURL         *string       `json:"imageUrl"`
	HashTagSnake     *string       `json:"hash_tag"`
	HashTag          *string       `json:"hashTag"`
	StartedAtSnake   *string       `json:"started_at"`
	StartedAt        *string       `json:"startedAt"`
	EndedAtSnake     *string       `json:"ended_at"`
	EndedAt          *string       `json:"endedAt"`
	Limit            *int          `json:"limit"`
	Accepted         *int          `json:"accepted"`
	ParticipantCount *int          `json:"participantCount"`
	Waiting          *int          `json:"waiting"`
	WaitingCount     *int          `json:"waitingCount"`
	OwnerNickSnake   *string       `json:"owner_nickname"`
	OwnerNickname    *string       `json:"ownerNickname"`
	OwnerDispSnake   *string       `json:"owner_display_name"`
	OwnerDisplayName *string       `json:"ownerDisplayName"`
	Place            *string       `json:"place"`
	Address          *string       `json:"address"`
	Lat              *flexFloat    `json:"lat"`
	Lon              *flexFloat    `json:"lon"`
	Group            *wireGroupRef `json:"group"`
	Series           *wireGroupRef `json:"series"`
	UpdatedAtSnake   *string       `json:"updated_at"`
	UpdatedAt        *string       `json:"updatedAt"`
}

func (w wireEvent) normalize() Event {
	e := Event{
		ID:               value(first(w.ID, w.EventID)),
		Title:            value(w.Title),
		CatchPhrase:      value(first(w.Catch, w.CatchPhrase)),
		Description:      value(w.Description),
		URL:              value(firstString(w.URL, w.EventURL)),
		ImageURL:         firstString(w.ImageURLSnake, w.ImageURL),
		HashTag:          value(firstString(w.HashTagSnake, w.HashTag)),
		StartedAt:        value(firstString(w.StartedAtSnake, w.StartedAt)),
		EndedAt:          value(firstString(w.EndedAtSnake, w.EndedAt)),
		Limit:            w.Limit,
		ParticipantCount: value(first(w.Accepted, w.ParticipantCount)),
		WaitingCount:     value(first(w.Waiting, w.WaitingCount)),
		OwnerNickname:    value(firstString(w.OwnerNickSnake, w.OwnerNickname)),
		OwnerDisplayName: value(firstString(w.OwnerDispSnake, w.OwnerDisplayName)),
		Place:            w.Place,
		Address:          w.Address,
		Lat:              floatPtr(w.Lat),
		Lon:              floatPtr(w.Lon),
		UpdatedAt:        value(firstString(w.UpdatedAtSnake, w.UpdatedAt)),
	}
	if g := first(w.Group, w.Series); g != nil {
		e.GroupID = g.ID
		e.GroupTitle = g.Title
		e.GroupURL = g.URL
	}
	return e
}

type wireEventsResponse struct {
	wireEnvelope
	EventsAvailable *int        `json:"eventsAvailable"`
	EventsStart     *int        `json:"eventsStart"`
	Events          []wireEvent `json:"events"`
	Event           []wireEvent `json:"event"`
}

func (w wireEventsResponse) normalize() *EventsResponse {
	raw := w.Events
	if raw == nil {
		raw = w.Event
	}
	events := make([]Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, e.normalize())
	}
	r := &EventsResponse{Events: events}
	r.Returned, r.Available, r.Start = w.wireEnvelope.normalize(w.EventsAvailable, w.EventsStart, len(events))
	return r
}

type wireGroup struct {
	ID               *int       `json:"id"`
	Title            *string    `json:"title"`
	SubTitleSnake    *string    `json:"sub_title"`
	SubTitle         *string    `json:"subTitle"`
	Description      *string    `json:"description"`
	URL              *string    `json:"url"`
	CountryCodeSnake *string    `json:"country_code"`
	CountryCode      *string    `json:"countryCode"`
	Prefecture       *string    `json:"prefecture"`
	Place            *string    `json:"place"`
	Lat              *flexFloat `json:"lat"`
	Lon              *flexFloat `json:"lon"`
	MemberCountSnake *int       `json:"member_users_count"`
	MemberCount      *int       `json:"memberCount"`
	UpdatedAtSnake   *string    `json:"updated_at"`
	UpdatedAt        *string    `json:"updatedAt"`
}

func (w wireGroup) normalize() Group {
	return Group{
		ID:          value(w.ID),
		Title:       value(w.Title),
		SubTitle:    value(firstString(w.SubTitleSnake, w.SubTitle)),
		Description: value(w.Description),
		URL:         value(w.URL),
		CountryCode: value(firstString(w.CountryCodeSnake, w.CountryCode)),
		Prefecture:  value(w.Prefecture),
		Place:       w.Place,
		Lat:         floatPtr(w.Lat),
		Lon:         floatPtr(w.Lon),
		MemberCount: first(w.MemberCountSnake, w.MemberCount),
		UpdatedAt:   value(firstString(w.UpdatedAtSnake, w.UpdatedAt)),
	}
}

type wireGroupsResponse struct {
	wireEnvelope
	GroupsAvailable *int        `json:"groupsAvailable"`
	GroupsStart     *int        `json:"groupsStart"`
	Groups          []wireGroup `json:"groups"`
}

func (w wireGroupsResponse) normalize() *GroupsResponse {
	groups := make([]Group, 0, len(w.Groups))
	for _, g := range w.Groups {
		groups = append(groups, g.normalize())
	}
	r := &GroupsResponse{Groups: groups}
	r.Returned, r.Available, r.Start = w.wireEnvelope.normalize(w.GroupsAvailable, w.GroupsStart, len(groups))
	return r
}

type wireUser struct {
	ID                   *int    `json:"id"`
	Nickname             *string `json:"nickname"`
	DisplayNameSnake     *string `json:"display_name"`
	DisplayName          *string `json:"displayName"`
	TwitterUsernameSnake *string `json:"twitter_username"`
	TwitterUsername      *string `json:"twitterUsername"`
	GithubUsernameSnake  *string `json:"github_username"`
	GithubUsername       *string `json:"githubUsername"`
	URL                  *string `json:"url"`
	ImageURLSnake        *string `json:"image_url"`
	ImageURL             *string `json:"imageUrl"`
	UpdatedAtSnake       *string `json:"updated_at"`
	UpdatedAt            *string `json:"updatedAt"`
}

func (w wireUser) normalize() User {
	return User{
		ID:              value(w.ID),
		Nickname:        value(w.Nickname),
		DisplayName:     value(firstString(w.DisplayNameSnake, w.DisplayName)),
		TwitterUsername: firstString(w.TwitterUsernameSnake, w.TwitterUsername),
		GithubUsername:  firstString(w.GithubUsernameSnake, w.GithubUsername),
		URL:             value(w.URL),
		ImageURL:        firstString(w.ImageURLSnake, w.ImageURL),
		UpdatedAt:       value(firstString(w.UpdatedAtSnake, w.UpdatedAt)),
	}
}

type wireUsersResponse struct {
	wireEnvelope
	UsersAvailable *int       `json:"usersAvailable"`
	UsersStart     *int       `json:"usersStart"`
	Users          []wireUser `json:"users"`
}

func (w wireUsersResponse) normalize() *UsersResponse {
	users := make([]User, 0, len(w.Users))
	for _, u := range w.Users {
		users = append(users, u.normalize())
	}
	r := &UsersResponse{Users: users}
	r.Returned, r.Available, r.Start = w.wireEnvelope.normalize(w.UsersAvailable, w.UsersStart, len(users))
	return r
}

type wireSpeaker struct {
	Nickname *string `json:"nickname"`
}

type wirePresentation struct {
	ID                 *int         `json:"id"`
	Title              *string      `json:"title"`
	SpeakerNameSnake   *string      `json:"speaker_name"`
	SpeakerName        *string      `json:"speakerName"`
	User               *wireSpeaker `json:"user"`
	Description        *string      `json:"description"`
	URL                *string      `json:"url"`
	SlideshareURLSnake *string      `json:"slideshare_url"`
	SlideshareURL      *string      `json:"slideshareUrl"`
	YoutubeURLSnake    *string      `json:"youtube_url"`
	YoutubeURL         *string      `json:"youtubeUrl"`
	TwitterURLSnake    *string      `json:"twitter_url"`
	TwitterURL         *string      `json:"twitterUrl"`
	Order              *int         `json:"order"`
	UpdatedAtSnake     *string      `json:"updated_at"`
	UpdatedAt          *string      `json:"updatedAt"`
}

func (w wirePresentation) normalize() Presentation {
	speaker := firstString(w.SpeakerNameSnake, w.SpeakerName)
	if speaker == nil && w.User != nil {
		speaker = w.User.Nickname
	}
	return Presentation{
		ID:            value(w.ID),
		Title:         value(w.Title),
		SpeakerName:   value(speaker),
		Description:   value(w.Description),
		URL:           firstString(w.URL),
		SlideshareURL: firstString(w.SlideshareURLSnake, w.SlideshareURL),
		YoutubeURL:    firstString(w.YoutubeURLSnake, w.YoutubeURL),
		TwitterURL:    firstString(w.TwitterURLSnake, w.TwitterURL),
		Order:         value(w.Order),
		UpdatedAt:     value(firstString(w.UpdatedAtSnake, w.UpdatedAt)),
	}
}

type wirePresentationsResponse struct {
	Presentations []wirePresentation `json:"presentations"`
}

func (w wirePresentationsResponse) normalize() *PresentationsResponse {
	presentations := make([]Presentation, 0, len(w.Presentations))
	for _, p := range w.Presentations {
		presentations = append(presentations, p.normalize())
	}
	return &PresentationsResponse{
		Returned:      len(presentations),
		Presentations: presentations,
	}
}
