package mcpserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/lujin3/go-connpass/connpass"
	"github.com/lujin3/go-connpass/internal/textfmt"
)

// defaultPageSize is used when a page is requested without a page size.
const defaultPageSize = 20

var (
	eventSortKeys = []string{"start-date-asc", "start-date-desc", "newly-added"}
	groupSortKeys = []string{"most-events", "most-members", "newly-added"}
	userSortKeys  = []string{"most-events", "most-followers", "newly-added"}
)

var (
	eventSort = map[string]connpass.Order{
		"start-date-asc":  connpass.OrderStartedAtAsc,
		"start-date-desc": connpass.OrderStartedAtDesc,
		"newly-added":     connpass.OrderUpdatedAtDesc,
	}
	groupSort = map[string]connpass.Order{
		"most-events":  1,
		"most-members": 2,
		"newly-added":  3,
	}
	userSort = map[string]connpass.Order{
		"most-events":    1,
		"most-followers": 2,
		"newly-added":    3,
	}
)

// sortOrder maps key through m. An empty key leaves the order to the API.
func sortOrder(m map[string]connpass.Order, key string) (connpass.Order, error) {
	if key == "" {
		return 0, nil
	}
	o, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("unknown sort %q", key)
	}
	return o, nil
}

// pagination converts page/pageSize arguments. With neither set the API's
// own defaults apply.
func pagination(page, pageSize int) connpass.ListOptions {
	switch {
	case page > 0:
		return connpass.PageOptions(page, pageSize, defaultPageSize)
	case pageSize > 0:
		return connpass.ListOptions{Count: pageSize}
	default:
		return connpass.ListOptions{}
	}
}

// parseDate understands today, tomorrow and yesterday relative to now, and
// dates written YYYY-MM-DD, YYYYMMDD, YYYY/MM/DD or YYYY.MM.DD.
func parseDate(input string, now time.Time) (time.Time, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	today := startOfDay(now)

	switch normalized {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	compact := strings.NewReplacer("-", "", "/", "", ".", "").Replace(normalized)
	if len(compact) == 8 {
		if t, err := time.ParseInLocation("20060102", compact, now.Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(input)); err == nil {
		return startOfDay(t.In(now.Location())), nil
	}
	return time.Time{}, fmt.Errorf("could not understand date input: %s", input)
}

// compactDates parses every input into YYYYMMDD form.
func compactDates(inputs []string, now time.Time) ([]string, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		t, err := parseDate(in, now)
		if err != nil {
			return nil, err
		}
		out = append(out, t.Format("20060102"))
	}
	return out, nil
}

// hyphenatedDate parses input into YYYY-MM-DD form. Empty input stays
// empty.
func hyphenatedDate(input string, now time.Time) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	t, err := parseDate(input, now)
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}

// keyword folds full-width ASCII and trims the result.
func keyword(s string) string {
	return strings.TrimSpace(textfmt.FoldWidth(s))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
