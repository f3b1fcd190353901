package connpass

import (
	"context"
	"strconv"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// nicknameResolver turns a UserRef into a nickname. Nicknames looked up by
// ID are remembered for the life of the client; concurrent lookups of one ID
// share a single search.
type nicknameResolver struct {
	users *UsersService
	memo  *gocache.Cache
	group singleflight.Group
}

func newNicknameResolver(users *UsersService) *nicknameResolver {
	return &nicknameResolver{
		users: users,
		memo:  gocache.New(gocache.NoExpiration, 0),
	}
}

func (r *nicknameResolver) resolve(ctx context.Context, ref UserRef) (string, error) {
	if !ref.byID {
		nickname := strings.TrimSpace(ref.nickname)
		if nickname == "" {
			return "", invalid("nickname", "nickname must be a non-empty string")
		}
		return nickname, nil
	}

	if ref.id <= 0 {
		return "", invalid("user_id", "userId must be a positive integer")
	}

	key := strconv.Itoa(ref.id)
	if v, ok := r.memo.Get(key); ok {
		return v.(string), nil
	}

	// The shared search runs detached so that one waiter giving up does not
	// fail the others; each waiter still returns when its own ctx ends.
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		if v, ok := r.memo.Get(key); ok {
			return v, nil
		}
		resp, _, err := r.users.Search(detached, &UserSearchOptions{
			UserID:      []int{ref.id},
			ListOptions: ListOptions{Count: 1},
		})
		if err != nil {
			return "", err
		}
		for _, u := range resp.Users {
			if u.ID == ref.id {
				r.memo.Set(key, u.Nickname, gocache.NoExpiration)
				return u.Nickname, nil
			}
		}
		return "", &NotFoundError{Resource: "user with ID", Key: key}
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
