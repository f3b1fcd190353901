package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lujin3/go-connpass/connpass"
)

// SearchGroupsInput are the arguments of search_groups.
type SearchGroupsInput struct {
	Query      string `json:"query,omitempty" jsonschema:"Keywords that must match the group title or description"`
	GroupIDs   []int  `json:"groupIds,omitempty" jsonschema:"Only show these specific group IDs"`
	Country    string `json:"country,omitempty" jsonschema:"ISO country code, e.g. 'JP'"`
	Prefecture string `json:"prefecture,omitempty" jsonschema:"Prefecture name to filter by"`
	Page       int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize   int    `json:"pageSize,omitempty" jsonschema:"Groups per page (default 20)"`
	Sort       string `json:"sort,omitempty" jsonschema:"Rank by activity, member count, or recency"`
}

func (s *Server) addGroupTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_groups",
		Description: "Find Connpass groups with simple filters",
		InputSchema: inputSchema[SearchGroupsInput](map[string][]propertyRule{
			"page":     {atLeast(1)},
			"pageSize": {between(1, 100)},
			"sort":     {oneOf(groupSortKeys)},
			"groupIds": {positiveItems()},
		}),
	}, handle(s, "search_groups", s.searchGroups))
}

func (s *Server) searchGroups(ctx context.Context, in SearchGroupsInput) (any, error) {
	order, err := sortOrder(groupSort, in.Sort)
	if err != nil {
		return nil, err
	}
	opts := &connpass.GroupSearchOptions{
		GroupID:     in.GroupIDs,
		Keyword:     keyword(in.Query),
		CountryCode: strings.ToUpper(strings.TrimSpace(in.Country)),
		Order:       order,
		ListOptions: pagination(in.Page, in.PageSize),
	}
	if p := strings.TrimSpace(in.Prefecture); p != "" {
		opts.Prefecture = []string{p}
	}

	resp, _, err := s.client.Groups.Search(ctx, opts)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
