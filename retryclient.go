package mirrorfetch

import (
	"context"
	"net/http"
	"time"

	"github.com/eapache/go-resiliency/retrier"
)

// RetryClient wraps an *http.Client with constant-backoff retry of
// transport-level failures (DNS, TLS, connect, timeout). It never
// retries on a received status code: 206/304/501/4xx/5xx are all
// returned to the caller on the first response, so C4/C5/C7 retain full
// control over status-driven decisions. Context cancellation is
// blacklisted, so a cancelled request fails fast instead of burning
// through the backoff schedule.
type RetryClient struct {
	client  *http.Client
	retrier *retrier.Retrier
}

// NewRetryClient returns a RetryClient that retries up to ``retries``
// times, waiting ``every`` between attempts, with ``timeout`` applied to
// each individual attempt.
func NewRetryClient(retries int, every, timeout time.Duration) *RetryClient {
	b := make(retrier.BlacklistClassifier, 1)
	b[0] = context.Canceled

	return &RetryClient{
		client:  &http.Client{Timeout: timeout},
		retrier: retrier.New(retrier.ConstantBackoff(retries, every), b),
	}
}

// NewRetryClientWithExponentialBackoff returns a RetryClient that retries
// up to ``retries`` times, first after ``initially`` and exponentially
// longer each subsequent attempt, with ``timeout`` applied per attempt.
func NewRetryClientWithExponentialBackoff(retries int, initially, timeout time.Duration) *RetryClient {
	b := make(retrier.BlacklistClassifier, 1)
	b[0] = context.Canceled

	return &RetryClient{
		client:  &http.Client{Timeout: timeout},
		retrier: retrier.New(retrier.ExponentialBackoff(retries, initially), b),
	}
}

// Do sends req, retrying only transport-level failures. Whatever status
// the server answers with is handed back untouched on the first response
// received: status interpretation belongs to the caller (see probe.go
// and getter.go), not to the transport.
func (w *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var ret *http.Response

	try := func() error {
		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		ret = resp
		return nil
	}

	if err := w.retrier.Run(try); err != nil {
		return nil, err
	}
	return ret, nil
}
