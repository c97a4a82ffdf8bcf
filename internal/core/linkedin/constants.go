package linkedin

import "time"

// Voyager GraphQL endpoint for the saved-posts search.
const (
	DefaultBaseURL = "https://www.linkedin.com/voyager/api/graphql"
	QueryID        = "voyagerSearchDashClusters.b0928897b71bd00a5a7291755dcd64f0"
	SearchIntent   = "SEARCH_MY_ITEMS_SAVED_POSTS"

	acceptHeader   = "application/vnd.linkedin.normalized+json+2.1"
	restliProtocol = "2.0.0"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
)

// Pagination and retry defaults
const (
	MaxPages          = 10
	MaxRetries        = 3
	DefaultPageSize   = 10
	DefaultPageDelay  = 500 * time.Millisecond
	DefaultRetryDelay = 1 * time.Second
)
