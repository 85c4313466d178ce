package domain

// FetchHint selects the fetcher for a target: plain HTTP, a headless
// browser, or a JSON API endpoint.
type FetchHint string

const (
	HintStatic  FetchHint = "static"
	HintBrowser FetchHint = "browser"
	HintJSONAPI FetchHint = "jsonapi"
)

// SourceTarget is one URL to crawl on one platform. Produced by the
// target generator, consumed once by the dispatcher, never persisted.
type SourceTarget struct {
	Platform string
	URL      string
	Priority int // lower is tried first
	Hint     FetchHint
}
