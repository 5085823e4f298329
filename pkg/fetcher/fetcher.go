// Package fetcher performs HTTP fetches under adversarial conditions:
// identity rotation against anti-bot defenses, bounded retry with fixed
// backoff, redirect tracking, and error classification.
package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	attemptTimeout = 20 * time.Second
	maxRedirects   = 5
	defaultBackoff = time.Second
	maxBodyBytes   = 10 << 20
)

var errTooManyRedirects = errors.New("stopped after too many redirects")

// Result is a successful fetch. FinalURL is the redirect-resolved
// address, reported separately from the requested URL so extraction can
// classify link externality correctly.
type Result struct {
	Body       string
	FinalURL   string
	StatusCode int
}

type Fetcher struct {
	client   *http.Client
	profiles []Profile
	backoff  time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: attemptTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		profiles: defaultProfiles,
		backoff:  defaultBackoff,
	}
}

// Fetch attempts the GET once per identity profile, strictly in order.
// A 2xx response short-circuits; anything else records a classified
// error and moves to the next profile, waiting the backoff interval
// first when the failure was transport-level or a server error. After
// all profiles are exhausted the last classified error is returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	var lastErr *FetchError

	for i, profile := range f.profiles {
		if i > 0 && retryable(lastErr) {
			if err := sleep(ctx, f.backoff); err != nil {
				return nil, lastErr
			}
		}

		result, fetchErr := f.attempt(ctx, url, profile)
		if fetchErr == nil {
			return result, nil
		}
		lastErr = fetchErr
	}

	return nil, lastErr
}

// attempt performs one GET with one identity profile. Non-success
// statuses, including 5xx, are evaluated rather than treated as
// transport failures.
func (f *Fetcher) attempt(ctx context.Context, url string, profile Profile) (*Result, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: KindUnreachable, Err: err}
	}
	req.Header.Set("User-Agent", profile.UserAgent)
	for key, value := range baseHeaders {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransport(url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransport(url, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Result{
			Body:       string(body),
			FinalURL:   resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
		}, nil
	}

	kind := KindHTTP
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		kind = KindBlocked
	}
	return nil, &FetchError{URL: url, Kind: kind, StatusCode: resp.StatusCode}
}

// classifyTransport maps a transport-level failure onto the error
// taxonomy: timeouts are reported as such, everything else (DNS,
// connection refused, TLS) is unreachable. Exceeding the redirect cap
// counts as a generic HTTP error.
func classifyTransport(url string, err error) *FetchError {
	if errors.Is(err, errTooManyRedirects) {
		return &FetchError{URL: url, Kind: KindHTTP, Err: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{URL: url, Kind: KindTimeout, Err: err}
	}

	return &FetchError{URL: url, Kind: KindUnreachable, Err: err}
}

// retryable reports whether the previous failure warrants a backoff
// pause before the next profile. Client errors move on immediately;
// transport failures and server errors wait.
func retryable(err *FetchError) bool {
	if err == nil {
		return false
	}
	if err.StatusCode >= 400 && err.StatusCode < 500 {
		return false
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
