package connpass

import (
	"context"
	"net/http"
)

// GroupsService handles communication with the group related methods of the
// connpass API.
type GroupsService service

// Search returns one page of groups matching opts.
func (s *GroupsService) Search(ctx context.Context, opts *GroupSearchOptions) (*GroupsResponse, *Response, error) {
	if opts == nil {
		opts = &GroupSearchOptions{}
	}
	if err := validateGroupSearch(opts); err != nil {
		return nil, nil, err
	}

	u, err := addOptions("groups/", opts)
	if err != nil {
		return nil, nil, err
	}

	return s.client.getGroups(ctx, u)
}

// SearchAll follows pagination until every group matching opts has been
// fetched. opts.Start and opts.Count are ignored.
func (s *GroupsService) SearchAll(ctx context.Context, opts *GroupSearchOptions) (*GroupsResponse, error) {
	if opts == nil {
		opts = &GroupSearchOptions{}
	}
	if err := validateGroupSearch(opts); err != nil {
		return nil, err
	}

	all, err := collectAll(ctx, s.client.pagePause, func(ctx context.Context, lo ListOptions) (pageResult[Group], error) {
		o := *opts
		o.ListOptions = lo
		r, _, err := s.Search(ctx, &o)
		if err != nil {
			return pageResult[Group]{}, err
		}
		return pageResult[Group]{Items: r.Groups, Returned: r.Returned, Available: r.Available, Start: r.Start}, nil
	})
	if err != nil {
		return nil, err
	}
	return &GroupsResponse{Returned: all.Returned, Available: all.Available, Start: all.Start, Groups: all.Items}, nil
}

func (c *Client) getGroups(ctx context.Context, u string) (*GroupsResponse, *Response, error) {
	req, err := c.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}

	var raw wireGroupsResponse
	resp, err := c.Do(ctx, req, &raw)
	if err != nil {
		return nil, resp, err
	}
	return raw.normalize(), resp, nil
}
