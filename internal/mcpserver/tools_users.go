package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lujin3/go-connpass/connpass"
)

// SearchUsersInput are the arguments of search_users.
type SearchUsersInput struct {
	Nickname string `json:"nickname,omitempty" jsonschema:"Match users whose nickname contains this text"`
	UserIDs  []int  `json:"userIds,omitempty" jsonschema:"Only show these specific user IDs"`
	Page     int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize int    `json:"pageSize,omitempty" jsonschema:"Users per page (default 20)"`
	Sort     string `json:"sort,omitempty" jsonschema:"Rank by event participation, followers, or recency"`
}

// UserGroupsInput are the arguments of get_user_groups.
type UserGroupsInput struct {
	UserID int `json:"userId" jsonschema:"Connpass user ID"`
	Limit  int `json:"limit,omitempty" jsonschema:"How many groups to return (default 20)"`
	Page   int `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
}

// UserEventsInput are the arguments of get_user_attended_events and
// get_user_presenter_events.
type UserEventsInput struct {
	UserID int    `json:"userId" jsonschema:"Connpass user ID"`
	Limit  int    `json:"limit,omitempty" jsonschema:"How many events to return (default 20)"`
	Page   int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Sort   string `json:"sort,omitempty" jsonschema:"Sort by schedule or recency"`
}

func (s *Server) addUserTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_users",
		Description: "Discover Connpass users",
		InputSchema: inputSchema[SearchUsersInput](map[string][]propertyRule{
			"page":     {atLeast(1)},
			"pageSize": {between(1, 100)},
			"sort":     {oneOf(userSortKeys)},
			"userIds":  {positiveItems()},
		}),
	}, handle(s, "search_users", s.searchUsers))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_groups",
		Description: "List the groups a user belongs to",
		InputSchema: inputSchema[UserGroupsInput](map[string][]propertyRule{
			"userId": {atLeast(1)},
			"limit":  {between(1, 100)},
			"page":   {atLeast(1)},
		}),
	}, handle(s, "get_user_groups", s.userGroups))

	eventRules := map[string][]propertyRule{
		"userId": {atLeast(1)},
		"limit":  {between(1, 100)},
		"page":   {atLeast(1)},
		"sort":   {oneOf(eventSortKeys)},
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_attended_events",
		Description: "List events that a user has attended",
		InputSchema: inputSchema[UserEventsInput](eventRules),
	}, handle(s, "get_user_attended_events", s.userEvents(s.client.Users.AttendedEvents)))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_user_presenter_events",
		Description: "List events where the user presented",
		InputSchema: inputSchema[UserEventsInput](eventRules),
	}, handle(s, "get_user_presenter_events", s.userEvents(s.client.Users.PresenterEvents)))
}

func (s *Server) searchUsers(ctx context.Context, in SearchUsersInput) (any, error) {
	order, err := sortOrder(userSort, in.Sort)
	if err != nil {
		return nil, err
	}
	opts := &connpass.UserSearchOptions{
		UserID:      in.UserIDs,
		Order:       order,
		ListOptions: pagination(in.Page, in.PageSize),
	}
	if n := strings.TrimSpace(in.Nickname); n != "" {
		opts.Nickname = []string{n}
	}

	resp, _, err := s.client.Users.Search(ctx, opts)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Server) userGroups(ctx context.Context, in UserGroupsInput) (any, error) {
	opts := pagination(in.Page, in.Limit)
	resp, _, err := s.client.Users.Groups(ctx, connpass.UserID(in.UserID), &opts)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

type userEventsFunc func(context.Context, connpass.UserRef, *connpass.UserEventsOptions) (*connpass.EventsResponse, *connpass.Response, error)

func (s *Server) userEvents(fetch userEventsFunc) func(context.Context, UserEventsInput) (any, error) {
	return func(ctx context.Context, in UserEventsInput) (any, error) {
		order, err := sortOrder(eventSort, in.Sort)
		if err != nil {
			return nil, err
		}
		resp, _, err := fetch(ctx, connpass.UserID(in.UserID), &connpass.UserEventsOptions{
			Order:       order,
			ListOptions: pagination(in.Page, in.Limit),
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	}
}
