package connpass

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// UsersService handles communication with the user related methods of the
// connpass API.
type UsersService service

// UserRef identifies a user either by numeric ID or by nickname. The user
// endpoints address users by nickname, so an ID is resolved first.
type UserRef struct {
	id       int
	nickname string
	byID     bool
}

// UserID refers to a user by numeric ID.
func UserID(id int) UserRef { return UserRef{id: id, byID: true} }

// Nickname refers to a user by nickname.
func Nickname(nickname string) UserRef { return UserRef{nickname: nickname} }

func (r UserRef) String() string {
	if r.byID {
		return strconv.Itoa(r.id)
	}
	return r.nickname
}

// Search returns one page of users matching opts.
func (s *UsersService) Search(ctx context.Context, opts *UserSearchOptions) (*UsersResponse, *Response, error) {
	if opts == nil {
		opts = &UserSearchOptions{}
	}
	if err := validateUserSearch(opts); err != nil {
		return nil, nil, err
	}

	u, err := addOptions("users/", opts)
	if err != nil {
		return nil, nil, err
	}

	req, err := s.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}

	var raw wireUsersResponse
	resp, err := s.client.Do(ctx, req, &raw)
	if err != nil {
		return nil, resp, err
	}
	return raw.normalize(), resp, nil
}

// SearchAll follows pagination until every user matching opts has been
// fetched. opts.Start and opts.Count are ignored.
func (s *UsersService) SearchAll(ctx context.Context, opts *UserSearchOptions) (*UsersResponse, error) {
	if opts == nil {
		opts = &UserSearchOptions{}
	}
	if err := validateUserSearch(opts); err != nil {
		return nil, err
	}

	all, err := collectAll(ctx, s.client.pagePause, func(ctx context.Context, lo ListOptions) (pageResult[User], error) {
		o := *opts
		o.ListOptions = lo
		r, _, err := s.Search(ctx, &o)
		if err != nil {
			return pageResult[User]{}, err
		}
		return pageResult[User]{Items: r.Users, Returned: r.Returned, Available: r.Available, Start: r.Start}, nil
	})
	if err != nil {
		return nil, err
	}
	return &UsersResponse{Returned: all.Returned, Available: all.Available, Start: all.Start, Users: all.Items}, nil
}

// ResolveNickname returns the nickname of the referenced user. Nicknames
// are returned trimmed without a request; IDs are looked up once and
// remembered for the life of the client.
func (s *UsersService) ResolveNickname(ctx context.Context, ref UserRef) (string, error) {
	return s.client.nicknames.resolve(ctx, ref)
}

// Groups returns the groups the user belongs to.
func (s *UsersService) Groups(ctx context.Context, ref UserRef, opts *ListOptions) (*GroupsResponse, *Response, error) {
	if opts == nil {
		opts = &ListOptions{}
	}
	if err := validateList(*opts); err != nil {
		return nil, nil, err
	}

	u, err := s.userPath(ctx, ref, "groups")
	if err != nil {
		return nil, nil, err
	}
	u, err = addOptions(u, opts)
	if err != nil {
		return nil, nil, err
	}

	return s.client.getGroups(ctx, u)
}

// AttendedEvents returns the events the user has attended.
func (s *UsersService) AttendedEvents(ctx context.Context, ref UserRef, opts *UserEventsOptions) (*EventsResponse, *Response, error) {
	return s.userEvents(ctx, ref, "attended_events", opts)
}

// PresenterEvents returns the events the user has presented at.
func (s *UsersService) PresenterEvents(ctx context.Context, ref UserRef, opts *UserEventsOptions) (*EventsResponse, *Response, error) {
	return s.userEvents(ctx, ref, "presenter_events", opts)
}

func (s *UsersService) userEvents(ctx context.Context, ref UserRef, kind string, opts *UserEventsOptions) (*EventsResponse, *Response, error) {
	if opts == nil {
		opts = &UserEventsOptions{}
	}
	if err := validateList(opts.ListOptions); err != nil {
		return nil, nil, err
	}
	if err := validateOrder(opts.Order); err != nil {
		return nil, nil, err
	}

	u, err := s.userPath(ctx, ref, kind)
	if err != nil {
		return nil, nil, err
	}
	u, err = addOptions(u, opts)
	if err != nil {
		return nil, nil, err
	}

	return s.client.getEvents(ctx, u)
}

func (s *UsersService) userPath(ctx context.Context, ref UserRef, kind string) (string, error) {
	nickname, err := s.ResolveNickname(ctx, ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("users/%s/%s/", url.PathEscape(nickname), kind), nil
}
