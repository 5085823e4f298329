package fetcher

import "fmt"

// ErrorKind classifies a terminal fetch failure so callers can explain
// why a URL failed: a blocked site, an unreachable site, and a transient
// failure all need different remediation.
type ErrorKind string

const (
	KindBlocked     ErrorKind = "blocked"     // site actively refusing automated access
	KindUnreachable ErrorKind = "unreachable" // DNS or connection failure
	KindTimeout     ErrorKind = "timeout"
	KindHTTP        ErrorKind = "http_error" // other non-success status
)

// FetchError is returned only after every identity profile has been
// exhausted; it carries the classification of the last attempt.
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s (HTTP %d)", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Detail returns a human-readable explanation suitable for surfacing to
// an end user.
func (e *FetchError) Detail() string {
	switch e.Kind {
	case KindBlocked:
		return "This website is blocking automated requests. Try a different URL or contact the site owner."
	case KindUnreachable:
		return "Cannot reach the website. Check if the URL is correct and the site is online."
	case KindTimeout:
		return "The website took too long to respond. Please try again later."
	default:
		return "Unable to access the website. Please try again or use a different URL."
	}
}
