package domain

import "time"

// FetchFailure classifies why a fetch produced no content. An empty
// value means success. Failures are data, not errors: one bad source
// must not fail the whole dispatch.
type FetchFailure string

const (
	FetchOK           FetchFailure = ""
	FetchTimeout      FetchFailure = "timeout"
	FetchBlocked      FetchFailure = "blocked"
	FetchNotFound     FetchFailure = "not_found"
	FetchNetworkError FetchFailure = "network_error"
)

// Retryable reports whether a second attempt makes sense. Only
// transient network errors qualify; blocked and not_found are terminal
// for the target within the run.
func (f FetchFailure) Retryable() bool {
	return f == FetchNetworkError
}

// RawFetchResult carries the raw content of one target, or the reason
// there is none.
type RawFetchResult struct {
	Platform    string
	URL         string
	Body        []byte
	ContentType string
	Failure     FetchFailure
	FetchedAt   time.Time
	ElapsedMS   int64
}

// OK reports whether the fetch yielded usable content.
func (r RawFetchResult) OK() bool {
	return r.Failure == FetchOK && len(r.Body) > 0
}
