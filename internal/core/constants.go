package core

import "time"

// DefaultHTTPTimeout bounds each outbound request when none is configured.
const DefaultHTTPTimeout = 30 * time.Second
