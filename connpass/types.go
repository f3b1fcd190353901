package connpass

// Order selects the sort order of a search. Its meaning depends on the
// entity being searched; see the Order constants for events.
type Order int

const (
	OrderUpdatedAtDesc Order = 1
	OrderStartedAtAsc  Order = 2
	OrderStartedAtDesc Order = 3
)

// ListOptions specifies the optional parameters to paginated searches.
type ListOptions struct {
	// Start is the 1-based position of the first result.
	Start int `url:"start,omitempty"`

	// Count is the number of results per page, 1 to 100.
	Count int `url:"count,omitempty"`
}

// PageOptions converts a 1-based page number and page size into
// ListOptions. Non-positive values fall back to page 1 and the given default
// size.
func PageOptions(page, pageSize, defaultSize int) ListOptions {
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if page <= 0 {
		page = 1
	}
	return ListOptions{Start: 1 + (page-1)*pageSize, Count: pageSize}
}

// EventSearchOptions specifies the parameters to EventsService.Search.
type EventSearchOptions struct {
	EventID   []int  `url:"event_id,omitempty"`
	Keyword   string `url:"keyword,omitempty"`
	KeywordOr string `url:"keyword_or,omitempty"`

	// YMD lists explicit days in YYYYMMDD form. It is replaced by the
	// expansion of YMDFrom..YMDTo when both are set.
	YMD     []string `url:"ymd,omitempty"`
	YMDFrom string   `url:"ymd_from,omitempty"`
	YMDTo   string   `url:"ymd_to,omitempty"`

	Nickname      string   `url:"nickname,omitempty"`
	OwnerNickname string   `url:"owner_nickname,omitempty"`
	GroupID       []int    `url:"group_id,omitempty"`
	Prefecture    []string `url:"prefecture,omitempty"`
	Order         Order    `url:"order,omitempty"`

	ListOptions
}

// GroupSearchOptions specifies the parameters to GroupsService.Search.
type GroupSearchOptions struct {
	GroupID     []int    `url:"group_id,omitempty"`
	Keyword     string   `url:"keyword,omitempty"`
	CountryCode string   `url:"country_code,omitempty"`
	Prefecture  []string `url:"prefecture,omitempty"`
	Order       Order    `url:"order,omitempty"`

	ListOptions
}

// UserSearchOptions specifies the parameters to UsersService.Search.
type UserSearchOptions struct {
	UserID   []int    `url:"user_id,omitempty"`
	Nickname []string `url:"nickname,omitempty"`
	Order    Order    `url:"order,omitempty"`

	ListOptions
}

// UserEventsOptions specifies the parameters to UsersService.AttendedEvents
// and UsersService.PresenterEvents.
type UserEventsOptions struct {
	Order Order `url:"order,omitempty"`

	ListOptions
}

// Event is a connpass event.
type Event struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	CatchPhrase      string   `json:"catchPhrase"`
	Description      string   `json:"description"`
	URL              string   `json:"url"`
	ImageURL         *string  `json:"imageUrl,omitempty"`
	HashTag          string   `json:"hashTag"`
	StartedAt        string   `json:"startedAt"`
	EndedAt          string   `json:"endedAt"`
	Limit            *int     `json:"limit,omitempty"`
	ParticipantCount int      `json:"participantCount"`
	WaitingCount     int      `json:"waitingCount"`
	OwnerNickname    string   `json:"ownerNickname"`
	OwnerDisplayName string   `json:"ownerDisplayName"`
	Place            *string  `json:"place,omitempty"`
	Address          *string  `json:"address,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lon              *float64 `json:"lon,omitempty"`
	GroupID          *int     `json:"groupId,omitempty"`
	GroupTitle       *string  `json:"groupTitle,omitempty"`
	GroupURL         *string  `json:"groupUrl,omitempty"`
	UpdatedAt        string   `json:"updatedAt"`
}

// EventsResponse is one page of events.
type EventsResponse struct {
	Returned  int     `json:"returned"`
	Available int     `json:"available"`
	Start     int     `json:"start"`
	Events    []Event `json:"events"`
}

// EventWithPresentations pairs an event with its presentations.
type EventWithPresentations struct {
	Event
	Presentations []Presentation `json:"presentations"`
}

// Group is a connpass group.
type Group struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	SubTitle    string   `json:"subTitle,omitempty"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	CountryCode string   `json:"countryCode"`
	Prefecture  string   `json:"prefecture"`
	Place       *string  `json:"place,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	MemberCount *int     `json:"memberCount,omitempty"`
	UpdatedAt   string   `json:"updatedAt"`
}

// GroupsResponse is one page of groups.
type GroupsResponse struct {
	Returned  int     `json:"returned"`
	Available int     `json:"available"`
	Start     int     `json:"start"`
	Groups    []Group `json:"groups"`
}

// User is a connpass user.
type User struct {
	ID              int     `json:"id"`
	Nickname        string  `json:"nickname"`
	DisplayName     string  `json:"displayName"`
	TwitterUsername *string `json:"twitterUsername,omitempty"`
	GithubUsername  *string `json:"githubUsername,omitempty"`
	URL             string  `json:"url"`
	ImageURL        *string `json:"imageUrl,omitempty"`
	UpdatedAt       string  `json:"updatedAt"`
}

// UsersResponse is one page of users.
type UsersResponse struct {
	Returned  int    `json:"returned"`
	Available int    `json:"available"`
	Start     int    `json:"start"`
	Users     []User `json:"users"`
}

// Presentation is a talk registered on an event.
type Presentation struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	SpeakerName   string  `json:"speakerName"`
	Description   string  `json:"description"`
	URL           *string `json:"url,omitempty"`
	SlideshareURL *string `json:"slideshareUrl,omitempty"`
	YoutubeURL    *string `json:"youtubeUrl,omitempty"`
	TwitterURL    *string `json:"twitterUrl,omitempty"`
	Order         int     `json:"order"`
	UpdatedAt     string  `json:"updatedAt"`
}

// PresentationsResponse lists the presentations of one event.
type PresentationsResponse struct {
	Returned      int            `json:"returned"`
	Presentations []Presentation `json:"presentations"`
}
