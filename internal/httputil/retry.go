// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the catalog client.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultMaxRetries = 2

// RetryFunc is told about each retry before the backoff wait. status is 0
// when the attempt failed at the transport level.
type RetryFunc func(attempt int, status int, err error)

// Retryable reports whether a response status is worth retrying: HTTP 429
// (Too Many Requests) and any 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// DoWithRetry executes an HTTP request and retries on HTTP 429, 5xx, and
// transport errors with exponential backoff starting at RetryBaseDelay and
// doubling each attempt.
//
// A negative maxRetries uses the default (2); zero disables retries. On each
// retryable response the body is drained and closed before sleeping. If the
// context is cancelled the function returns ctx.Err(). After exhausting
// retries the last response (or transport error) is returned so the caller
// can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return DoWithRetryNotify(ctx, client, req, maxRetries, nil)
}

// DoWithRetryNotify is DoWithRetry with a callback invoked before each retry.
func DoWithRetryNotify(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, notify RetryFunc) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= maxRetries {
				return nil, err
			}
			if notify != nil {
				notify(attempt+1, 0, err)
			}
		} else {
			if !Retryable(resp.StatusCode) || attempt >= maxRetries {
				return resp, nil
			}

			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if notify != nil {
				notify(attempt+1, resp.StatusCode, nil)
			}
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
