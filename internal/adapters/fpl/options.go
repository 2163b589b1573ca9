package fpl

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// WithRequestsPerSecond limits the upstream request rate.
func WithRequestsPerSecond(rps float64) Option {
	return func(cl *Client) {
		if rps > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithBreaker configures when the circuit opens: after minRequests with a
// failure ratio of at least ratio, staying open for openFor.
func WithBreaker(minRequests uint32, ratio float64, openFor time.Duration) Option {
	return func(cl *Client) {
		cl.breakerMinRequests = minRequests
		cl.breakerRatio = ratio
		if openFor > 0 {
			cl.breakerTimeout = openFor
		}
	}
}
