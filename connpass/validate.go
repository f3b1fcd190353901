package connpass

import (
	"regexp"
	"strings"
	"time"
)

const (
	maxCount = 100

	// maxExpandedDays caps the number of days a ymd_from..ymd_to range
	// expands into.
	maxExpandedDays = 366
)

var (
	hyphenDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	compactDate = regexp.MustCompile(`^\d{8}$`)
)

func validateList(opts ListOptions) error {
	if opts.Count != 0 && (opts.Count < 1 || opts.Count > maxCount) {
		return invalid("count", "Count must be between 1 and %d", maxCount)
	}
	if opts.Start < 0 {
		return invalid("start", "Start must be greater than 0")
	}
	return nil
}

func validateOrder(o Order) error {
	if o != 0 && (o < 1 || o > 3) {
		return invalid("order", "Order must be 1 (updated_at desc), 2 (started_at asc), or 3 (started_at desc)")
	}
	return nil
}

func validateIDs(field, label string, ids []int) error {
	for _, id := range ids {
		if id <= 0 {
			return invalid(field, "All %s IDs must be positive numbers", label)
		}
	}
	return nil
}

func validateEventSearch(opts *EventSearchOptions) error {
	if err := validateList(opts.ListOptions); err != nil {
		return err
	}
	if err := validateOrder(opts.Order); err != nil {
		return err
	}
	if err := validateIDs("event_id", "event", opts.EventID); err != nil {
		return err
	}
	if err := validateIDs("group_id", "group", opts.GroupID); err != nil {
		return err
	}
	if opts.YMDFrom != "" && !hyphenDate.MatchString(opts.YMDFrom) {
		return invalid("ymd_from", "ymdFrom must be in YYYY-MM-DD format")
	}
	if opts.YMDTo != "" && !hyphenDate.MatchString(opts.YMDTo) {
		return invalid("ymd_to", "ymdTo must be in YYYY-MM-DD format")
	}
	for _, d := range opts.YMD {
		if !compactDate.MatchString(d) {
			return invalid("ymd", "ymd must be an array of dates in YYYYMMDD format")
		}
	}
	return nil
}

func validateGroupSearch(opts *GroupSearchOptions) error {
	if err := validateList(opts.ListOptions); err != nil {
		return err
	}
	if err := validateOrder(opts.Order); err != nil {
		return err
	}
	return validateIDs("group_id", "group", opts.GroupID)
}

func validateUserSearch(opts *UserSearchOptions) error {
	if err := validateList(opts.ListOptions); err != nil {
		return err
	}
	if err := validateOrder(opts.Order); err != nil {
		return err
	}
	if err := validateIDs("user_id", "user", opts.UserID); err != nil {
		return err
	}
	for _, n := range opts.Nickname {
		if strings.TrimSpace(n) == "" {
			return invalid("nickname", "nickname must be a non-empty string")
		}
	}
	return nil
}

// expandDateRange lists every day from..to inclusive as YYYYMMDD. It
// returns nil when either bound is not a valid date or to precedes from.
func expandDateRange(from, to string) []string {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return nil
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return nil
	}

	var days []string
	for d := start; !d.After(end) && len(days) < maxExpandedDays; d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("20060102"))
	}
	return days
}

// eventQuery returns the parameters actually sent for opts.
func eventQuery(opts *EventSearchOptions) *EventSearchOptions {
	q := *opts
	if q.YMDFrom != "" && q.YMDTo != "" {
		if days := expandDateRange(q.YMDFrom, q.YMDTo); days != nil {
			q.YMD = days
		}
	}
	return &q
}
