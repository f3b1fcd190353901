package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lujin3/go-connpass/connpass"
)

var (
	jst      = time.FixedZone("JST", 9*60*60)
	fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, jst)
)

const eventsPage = `{
	"results_returned": 2,
	"results_available": 2,
	"results_start": 1,
	"events": [
		{
			"id": 364,
			"title": " Go Conference ",
			"catch": "All about Go",
			"description": "<p>Hello <b>gophers</b></p><p>See you</p>",
			"url": "https://connpass.com/event/364/",
			"started_at": "2024-03-01T19:00:00+09:00",
			"ended_at": "2024-03-01T21:00:00+09:00",
			"limit": 100,
			"accepted": 80,
			"waiting": 3,
			"owner_nickname": "gopher",
			"owner_display_name": "Gopher",
			"place": "Tokyo",
			"group": {"id": 1, "title": "Go Tokyo", "url": "https://go.connpass.com/"},
			"updated_at": "2024-02-01T00:00:00+09:00"
		},
		{
			"id": 365,
			"title": "Rust Night",
			"url": "https://connpass.com/event/365/",
			"started_at": "2024-03-04T19:00:00+09:00",
			"ended_at": "2024-03-04T21:00:00+09:00",
			"accepted": 10,
			"waiting": 0,
			"owner_nickname": "crab",
			"owner_display_name": "Crab",
			"updated_at": "2024-02-02T00:00:00+09:00"
		}
	]
}`

type testEnv struct {
	mux     *http.ServeMux
	session *mcp.ClientSession
}

// setupServer starts a fake connpass API and an MCP server wired to it,
// connected to an in-memory client session.
func setupServer(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	client, err := connpass.NewClient(nil,
		connpass.WithAPIKey("test-key"),
		connpass.WithBaseURL(api.URL+"/"),
		connpass.WithRateLimit(false, 0),
		connpass.WithPagePause(0),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	srv, err := New(client, cfg, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil).
		Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return &testEnv{mux: mux, session: cs}
}

func (e *testEnv) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := e.session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T, want *mcp.TextContent", res.Content[0])
	return tc.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, res.IsError, "tool returned error: %s", resultText(t, res))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), v))
}

func TestServer_ListTools(t *testing.T) {
	env := setupServer(t, Config{})

	res, err := env.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	tools := make(map[string]*mcp.Tool)
	var names []string
	for _, tool := range res.Tools {
		tools[tool.Name] = tool
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"get_event_presentations",
		"get_my_upcoming_events",
		"get_user_attended_events",
		"get_user_groups",
		"get_user_presenter_events",
		"search_events",
		"search_groups",
		"search_users",
	}, names)

	for _, name := range []string{"search_events", "get_my_upcoming_events"} {
		meta := tools[name].Meta
		assert.Equal(t, eventsWidgetURI, meta["openai/outputTemplate"], name)
		assert.Equal(t, "Connpassイベントを検索中…", meta["openai/toolInvocation/invoking"], name)
		assert.Equal(t, "Connpassイベントを表示しました", meta["openai/toolInvocation/invoked"], name)
	}
	assert.Empty(t, tools["search_groups"].Meta)
}

func TestServer_InputSchemas(t *testing.T) {
	env := setupServer(t, Config{})

	res, err := env.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	type property struct {
		Type    any      `json:"type"`
		Enum    []string `json:"enum"`
		Minimum *float64 `json:"minimum"`
		Maximum *float64 `json:"maximum"`
	}
	type schema struct {
		Type       string              `json:"type"`
		Required   []string            `json:"required"`
		Properties map[string]property `json:"properties"`
	}
	schemas := make(map[string]schema)
	for _, tool := range res.Tools {
		b, err := json.Marshal(tool.InputSchema)
		require.NoError(t, err)
		var s schema
		require.NoError(t, json.Unmarshal(b, &s))
		schemas[tool.Name] = s
	}

	events := schemas["search_events"]
	assert.Equal(t, "object", events.Type)
	assert.Empty(t, events.Required)
	assert.Equal(t, eventSortKeys, events.Properties["sort"].Enum)
	require.NotNil(t, events.Properties["pageSize"].Maximum)
	assert.Equal(t, 100.0, *events.Properties["pageSize"].Maximum)

	presentations := schemas["get_event_presentations"]
	assert.Equal(t, []string{"eventId"}, presentations.Required)
	assert.ElementsMatch(t, []any{"integer", "string"}, presentations.Properties["eventId"].Type)

	upcoming := schemas["get_my_upcoming_events"]
	require.NotNil(t, upcoming.Properties["daysAhead"].Maximum)
	assert.Equal(t, 60.0, *upcoming.Properties["daysAhead"].Maximum)

	assert.Equal(t, []string{"userId"}, schemas["get_user_groups"].Required)
	assert.Equal(t, groupSortKeys, schemas["search_groups"].Properties["sort"].Enum)
	assert.Equal(t, userSortKeys, schemas["search_users"].Properties["sort"].Enum)
	assert.Equal(t, eventSortKeys, schemas["get_user_presenter_events"].Properties["sort"].Enum)
}

func TestServer_SearchEvents(t *testing.T) {
	env := setupServer(t, Config{})

	var query url.Values
	env.mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, eventsPage)
	})

	res := env.call(t, "search_events", map[string]any{
		"query":       "ｇｏｌａｎｇ",
		"on":          []string{"today", "2024/03/02"},
		"prefectures": []string{"tokyo", "online"},
		"groupIds":    []int{1, 2},
		"page":        2,
		"sort":        "start-date-asc",
	})

	assert.Equal(t, "golang", query.Get("keyword"))
	assert.Equal(t, []string{"20240301", "20240302"}, query["ymd"])
	assert.Equal(t, []string{"tokyo", "online"}, query["prefecture"])
	assert.Equal(t, []string{"1", "2"}, query["group_id"])
	assert.Equal(t, "2", query.Get("order"))
	assert.Equal(t, "21", query.Get("start"))
	assert.Equal(t, "20", query.Get("count"))

	var got formattedEventsResponse
	decodeResult(t, res, &got)
	assert.Equal(t, 2, got.Returned)
	require.Len(t, got.Events, 2)

	e := got.Events[0]
	assert.Equal(t, "Go Conference", e.Title)
	assert.Equal(t, "All about Go", e.CatchPhrase)
	assert.Equal(t, "Hello gophers\nSee you", e.Summary)
	assert.Equal(t, &eventLocation{Place: "Tokyo"}, e.Location)
	assert.Equal(t, 80, e.Participants.Accepted)
	assert.Equal(t, 100, *e.Participants.Limit)
	assert.Equal(t, "Go Tokyo", e.Group.Title)
	assert.Nil(t, got.Events[1].Location)
	assert.Nil(t, got.Events[1].Group)

	assert.Nil(t, res.StructuredContent, "structured content without Apps SDK output")
	assert.Empty(t, res.Meta)
}

func TestServer_SearchEvents_DateRange(t *testing.T) {
	env := setupServer(t, Config{})

	var query url.Values
	env.mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"events": []}`)
	})

	res := env.call(t, "search_events", map[string]any{
		"from":         "20240301",
		"to":           "tomorrow",
		"hostNickname": " gopher ",
		"sort":         "newly-added",
	})
	require.False(t, res.IsError, resultText(t, res))

	assert.Equal(t, "2024-03-01", query.Get("ymd_from"))
	assert.Equal(t, "2024-03-02", query.Get("ymd_to"))
	assert.Equal(t, "gopher", query.Get("owner_nickname"))
	assert.Equal(t, "1", query.Get("order"))
}

func TestServer_SearchEvents_Errors(t *testing.T) {
	env := setupServer(t, Config{})

	var calls atomic.Int32
	env.mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "boom"}`)
	})

	res := env.call(t, "search_events", map[string]any{"on": []string{"someday"}})
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: could not understand date input: someday", resultText(t, res))
	assert.Zero(t, calls.Load(), "bad dates must not reach the API")

	res = env.call(t, "search_events", map[string]any{"query": "go"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Error: ")
	assert.Equal(t, int32(1), calls.Load())
}

func TestServer_SearchEvents_SchemaRejectsOutOfRange(t *testing.T) {
	env := setupServer(t, Config{})
	env.mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("out of range arguments reached the API")
	})

	res, err := env.session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search_events",
		Arguments: map[string]any{"pageSize": 500},
	})
	if err == nil {
		assert.True(t, res.IsError)
	}
}

func TestServer_EventPresentations(t *testing.T) {
	env := setupServer(t, Config{})

	env.mux.HandleFunc("/events/364/presentations/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"results_returned": 1,
			"presentations": [{
				"id": 5, "title": "Generics", "speaker_name": "gopher",
				"description": "<p>Type parameters in practice</p>",
				"url": "https://slides/5", "order": 1,
				"updated_at": "2024-02-01T00:00:00+09:00"
			}]
		}`)
	})

	for _, id := range []any{364, "364"} {
		res := env.call(t, "get_event_presentations", map[string]any{"eventId": id})

		var got formattedPresentationsResponse
		decodeResult(t, res, &got)
		require.Len(t, got.Presentations, 1, "eventId %v", id)
		p := got.Presentations[0]
		assert.Equal(t, "Generics", p.Title)
		assert.Equal(t, "gopher", p.Speaker)
		assert.Equal(t, "Type parameters in practice", p.Summary)
		assert.Equal(t, &presentationLinks{URL: "https://slides/5"}, p.Links)
	}
}

func TestServer_EventPresentations_BadID(t *testing.T) {
	env := setupServer(t, Config{})

	res := env.call(t, "get_event_presentations", map[string]any{"eventId": "0"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "eventId must be a positive integer")
}

func TestServer_UpcomingEvents(t *testing.T) {
	env := setupServer(t, Config{DefaultUserID: 42})

	var userLookups atomic.Int32
	env.mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		userLookups.Add(1)
		assert.Equal(t, "42", r.URL.Query().Get("user_id"))
		fmt.Fprint(w, `{"users": [{"id": 42, "nickname": "gopher"}]}`)
	})
	var query url.Values
	env.mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, eventsPage)
	})

	res := env.call(t, "get_my_upcoming_events", map[string]any{"daysAhead": 3})

	assert.Equal(t, "gopher", query.Get("nickname"))
	assert.Equal(t, "2024-03-01", query.Get("ymd_from"))
	assert.Equal(t, "2024-03-04", query.Get("ymd_to"))
	assert.Equal(t, "2", query.Get("order"))
	assert.Equal(t, "30", query.Get("count"))

	var got upcomingEvents
	decodeResult(t, res, &got)
	assert.Equal(t, 42, got.UserID)
	assert.Equal(t, "2024-03-01", got.Today.Date)
	assert.Equal(t, "2024-03-04", got.Upcoming.RangeEnd)
	require.Len(t, got.Today.Events, 1)
	assert.Equal(t, 364, got.Today.Events[0].ID)
	require.Len(t, got.Upcoming.Events, 1)
	assert.Equal(t, 365, got.Upcoming.Events[0].ID)
	assert.Equal(t, upcomingMetadata{Inspected: 2, Limit: 30, DaysAhead: 3}, got.Metadata)
	assert.Empty(t, got.Today.Events[0].Presentations)

	// The nickname of an ID is looked up once.
	env.call(t, "get_my_upcoming_events", nil)
	assert.Equal(t, int32(1), userLookups.Load())
}

func TestServer_UpcomingEvents_ByNicknameWithPresentations(t *testing.T) {
	env := setupServer(t, Config{})

	env.mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "crab", r.URL.Query().Get("nickname"))
		fmt.Fprint(w, `{"users": [{"id": 7, "nickname": "crab"}]}`)
	})
	var presentationCalls atomic.Int32
	env.mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events/":
			fmt.Fprint(w, eventsPage)
		case "/events/364/presentations/", "/events/365/presentations/":
			presentationCalls.Add(1)
			fmt.Fprint(w, `{"presentations": [{"id": 1, "title": "Talk", "speaker_name": "crab"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	res := env.call(t, "get_my_upcoming_events", map[string]any{
		"nickname":             "crab",
		"maxEvents":            5,
		"includePresentations": true,
	})

	var got upcomingEvents
	decodeResult(t, res, &got)
	assert.Equal(t, 7, got.UserID)
	assert.Equal(t, int32(2), presentationCalls.Load())
	require.Len(t, got.Today.Events, 1)
	require.Len(t, got.Today.Events[0].Presentations, 1)
	assert.Equal(t, "Talk", got.Today.Events[0].Presentations[0].Title)
	assert.True(t, got.Metadata.IncludePresentations)
	assert.Equal(t, 5, got.Metadata.Limit)
}

func TestServer_UpcomingEvents_Errors(t *testing.T) {
	env := setupServer(t, Config{})
	env.mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"users": []}`)
	})

	res := env.call(t, "get_my_upcoming_events", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: "+errNoUser.Error(), resultText(t, res))

	res = env.call(t, "get_my_upcoming_events", map[string]any{"nickname": "ghost"})
	assert.True(t, res.IsError)
	assert.Equal(t, `Error: User with nickname "ghost" not found.`, resultText(t, res))

	res = env.call(t, "get_my_upcoming_events", map[string]any{"userId": 99})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestServer_SearchGroups(t *testing.T) {
	env := setupServer(t, Config{})

	var query url.Values
	env.mux.HandleFunc("/groups/", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{
			"results_returned": 1, "results_available": 1, "results_start": 1,
			"groups": [{"id": 1, "title": "Go Tokyo", "url": "https://go.connpass.com/", "country_code": "JP", "prefecture": "tokyo"}]
		}`)
	})

	res := env.call(t, "search_groups", map[string]any{
		"query":      "go",
		"country":    "jp",
		"prefecture": "tokyo",
		"pageSize":   5,
		"sort":       "most-members",
	})

	assert.Equal(t, "go", query.Get("keyword"))
	assert.Equal(t, "JP", query.Get("country_code"))
	assert.Equal(t, "tokyo", query.Get("prefecture"))
	assert.Equal(t, "5", query.Get("count"))
	assert.Empty(t, query.Get("start"))
	assert.Equal(t, "2", query.Get("order"))

	var got connpass.GroupsResponse
	decodeResult(t, res, &got)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, "Go Tokyo", got.Groups[0].Title)
	assert.Equal(t, "JP", got.Groups[0].CountryCode)
}

func TestServer_SearchUsers(t *testing.T) {
	env := setupServer(t, Config{})

	var query url.Values
	env.mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"users": [{"id": 42, "nickname": "gopher", "display_name": "Gopher"}]}`)
	})

	res := env.call(t, "search_users", map[string]any{
		"nickname": "gopher",
		"userIds":  []int{42},
		"sort":     "most-followers",
	})

	assert.Equal(t, "gopher", query.Get("nickname"))
	assert.Equal(t, "42", query.Get("user_id"))
	assert.Equal(t, "2", query.Get("order"))

	var got connpass.UsersResponse
	decodeResult(t, res, &got)
	require.Len(t, got.Users, 1)
	assert.Equal(t, "Gopher", got.Users[0].DisplayName)

	res = env.call(t, "search_users", map[string]any{"sort": "loudest"})
	if !res.IsError {
		t.Errorf("unknown sort accepted: %s", resultText(t, res))
	}
}

func TestServer_UserTools(t *testing.T) {
	env := setupServer(t, Config{})

	env.mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/":
			fmt.Fprint(w, `{"users": [{"id": 42, "nickname": "gopher"}]}`)
		case "/users/gopher/groups/":
			assert.Equal(t, "11", r.URL.Query().Get("start"))
			assert.Equal(t, "10", r.URL.Query().Get("count"))
			fmt.Fprint(w, `{"groups": [{"id": 1, "title": "Go Tokyo"}]}`)
		case "/users/gopher/attended_events/":
			assert.Equal(t, "3", r.URL.Query().Get("order"))
			fmt.Fprint(w, `{"events": [{"id": 364, "title": "Go Conference"}]}`)
		case "/users/gopher/presenter_events/":
			assert.Empty(t, r.URL.Query().Get("order"))
			fmt.Fprint(w, `{"events": [{"id": 365, "title": "Rust Night"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	var groups connpass.GroupsResponse
	decodeResult(t, env.call(t, "get_user_groups", map[string]any{"userId": 42, "limit": 10, "page": 2}), &groups)
	require.Len(t, groups.Groups, 1)
	assert.Equal(t, "Go Tokyo", groups.Groups[0].Title)

	var attended connpass.EventsResponse
	decodeResult(t, env.call(t, "get_user_attended_events", map[string]any{"userId": 42, "sort": "start-date-desc"}), &attended)
	require.Len(t, attended.Events, 1)
	assert.Equal(t, 364, attended.Events[0].ID)

	var presented connpass.EventsResponse
	decodeResult(t, env.call(t, "get_user_presenter_events", map[string]any{"userId": 42}), &presented)
	require.Len(t, presented.Events, 1)
	assert.Equal(t, 365, presented.Events[0].ID)
}

func TestServer_AppsSDKOutput(t *testing.T) {
	env := setupServer(t, Config{AppsSDKOutput: true})

	long := make([]byte, 400)
	for i := range long {
		long[i] = 'a'
	}
	env.mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"events": [{"id": 1, "title": "t", "description": %q}]}`, string(long))
	})
	env.mux.HandleFunc("/groups/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"groups": []}`)
	})

	res := env.call(t, "search_events", map[string]any{"query": "go"})
	require.False(t, res.IsError, resultText(t, res))

	b, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var structured struct {
		App         string                  `json:"app"`
		Tool        string                  `json:"tool"`
		Kind        string                  `json:"kind"`
		GeneratedAt string                  `json:"generatedAt"`
		Data        formattedEventsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &structured))
	assert.Equal(t, "connpass", structured.App)
	assert.Equal(t, "search_events", structured.Tool)
	assert.Equal(t, "events", structured.Kind)
	assert.Equal(t, "2024-03-01T01:00:00Z", structured.GeneratedAt)
	require.Len(t, structured.Data.Events, 1)
	assert.Len(t, structured.Data.Events[0].Summary, 400, "description is not truncated for widgets")

	assert.Equal(t, eventsWidgetURI, res.Meta["openai/outputTemplate"])
	assert.Equal(t, "carousel", res.Meta["openai/widgetCategory"])
	tc := res.Content[0].(*mcp.TextContent)
	assert.Equal(t, true, tc.Meta["openai/resultCanProduceWidget"])

	res = env.call(t, "search_groups", nil)
	require.False(t, res.IsError, resultText(t, res))
	assert.NotNil(t, res.StructuredContent)
	assert.Empty(t, res.Meta, "groups are not rendered by the widget")
}

func TestServer_WidgetResource(t *testing.T) {
	env := setupServer(t, Config{})
	ctx := context.Background()

	list, err := env.session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list.Resources, 1)
	r := list.Resources[0]
	assert.Equal(t, eventsWidgetURI, r.URI)
	assert.Equal(t, "Connpass events carousel", r.Name)
	assert.Equal(t, "text/html+sky", r.MIMEType)
	assert.Equal(t, "connpass", r.Meta["openai/widgetDomain"])

	templates, err := env.session.ListResourceTemplates(ctx, nil)
	require.NoError(t, err)
	require.Len(t, templates.ResourceTemplates, 1)
	assert.Equal(t, eventsWidgetURI, templates.ResourceTemplates[0].URITemplate)

	read, err := env.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: eventsWidgetURI})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	c := read.Contents[0]
	assert.Equal(t, eventsWidgetHTML, c.Text)
	assert.Contains(t, c.Text, "window.openai")
	assert.Equal(t, "carousel", c.Meta["openai/widgetCategory"])
	csp, ok := c.Meta["openai/widgetCSP"].(map[string]any)
	require.True(t, ok, "widgetCSP is %T", c.Meta["openai/widgetCSP"])
	assert.Equal(t, []any{"https://connpass.com", "https://media.connpass.com"}, csp["resource_domains"])
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Config{})
	assert.Error(t, err)

	client, err := connpass.NewClient(nil, connpass.WithAPIKey("k"))
	require.NoError(t, err)
	defer client.Close()

	_, err = New(client, Config{Transport: "sse"})
	assert.ErrorContains(t, err, "unsupported MCP transport")

	srv, err := New(client, Config{BasePath: "rpc/"})
	require.NoError(t, err)
	assert.Equal(t, "/rpc", srv.cfg.BasePath)
	assert.Equal(t, TransportHTTP, srv.cfg.Transport)
}
