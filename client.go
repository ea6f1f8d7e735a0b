package mirrorfetch

import (
	"net/http"
	"time"
)

// DefaultClient is the transport handed to a Fetcher constructed with New.
// It retries transport-level failures a handful of times with constant
// backoff and hands every received status, 4xx and 5xx included, straight
// back to the engine without retrying. Swap it out with
// SetClient for a plain *http.Client or any other Client implementation.
var DefaultClient Client = NewRetryClient(5, time.Second, 60*time.Second)

// Client is the transport abstraction this package depends on. Anything
// satisfying it — an *http.Client, a RetryClient, or a test double — can
// back a Fetcher. The engine never assumes anything about the
// implementation beyond "send a request, get a response or an error".
type Client interface {
	Do(*http.Request) (*http.Response, error)
}
