// Package connpass provides a Go client library for the connpass API v2.
//
// connpass (https://connpass.com) is a Japanese community event platform.
// This client provides an idiomatic Go interface to its search endpoints for
// events, groups, users and presentations, following architectural patterns
// established by popular Go libraries like google/go-github.
//
// # Features
//
//   - Search events, groups and users with validated parameters
//   - Fetch every page of a search with SearchAll
//   - Event presentations with an optional persistent cache
//   - Events a user attended or presented at, groups a user belongs to
//   - Requests paced one at a time through a FIFO Dispatcher
//   - Structured errors classified by Kind
//
// # Authentication
//
// Every request carries an API key in the X-API-Key header. A key is
// required:
//
//	client, err := connpass.NewClient(nil, connpass.WithAPIKey(os.Getenv("CONNPASS_API_KEY")))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Settings can also be read from the environment:
//
//	cfg, err := connpass.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := connpass.NewClient(nil, cfg.Options(nil)...)
//
// # Usage
//
// Search events:
//
//	events, _, err := client.Events.Search(ctx, &connpass.EventSearchOptions{
//		Keyword: "golang",
//		YMDFrom: "2024-06-01",
//		YMDTo:   "2024-06-30",
//		Order:   connpass.OrderStartedAtAsc,
//	})
//
// Fetch every matching event:
//
//	all, err := client.Events.SearchAll(ctx, &connpass.EventSearchOptions{Keyword: "golang"})
//
// Look up a user by ID and list their presentations:
//
//	events, _, err := client.Users.PresenterEvents(ctx, connpass.UserID(42), nil)
//
// # Rate Limiting
//
// connpass allows roughly one request per second. Requests made through a
// Client are queued in arrival order and started at least one second after
// the previous one finished. Use WithRateLimit to change the delay.
//
// # Error Handling
//
//	_, _, err := client.Events.Search(ctx, opts)
//	switch connpass.KindOf(err) {
//	case connpass.KindValidation:
//		// bad input, nothing was sent
//	case connpass.KindRateLimited:
//		var rl *connpass.RateLimitError
//		errors.As(err, &rl)
//		fmt.Println("retry after", rl.Rate.Reset)
//	}
package connpass
