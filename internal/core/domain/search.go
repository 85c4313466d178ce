package domain

// SearchRequest is a search call as the transport hands it over.
// Filter overrides, when set, win over whatever intent parsing finds
// in the query text.
type SearchRequest struct {
	Query        string
	City         string
	District     string
	PriceMin     *int64
	PriceMax     *int64
	PropertyType PropertyType
	Limit        int
}

// SearchResult is the batch answer of one search run.
type SearchResult struct {
	Listings           []Listing
	Total              int
	Intent             SearchIntent
	PlatformsSearched  []string
	PlatformsSucceeded []string
	Failures           map[string]FetchFailure
	SearchTimeMS       int64
	FromCache          bool
}

// SearchEventType names the frames of a streaming search.
type SearchEventType string

const (
	EventStatus   SearchEventType = "status"
	EventResult   SearchEventType = "result"
	EventComplete SearchEventType = "complete"
	EventError    SearchEventType = "error"
)

// SearchEvent is one frame of a streaming search. Which fields are set
// depends on Type: status carries platform progress, result carries
// one accepted listing, complete closes the stream with totals.
type SearchEvent struct {
	Type SearchEventType

	Platform string
	Message  string
	Count    int
	Failure  FetchFailure

	Listing *Listing

	Total        int
	SearchTimeMS int64
	Platforms    []string
}

// EventSink receives streaming search frames. A non-nil error tells
// the producer the consumer is gone and the search should stop.
type EventSink func(event SearchEvent) error

// ListingFilter narrows stored-listing queries. Zero values and nil
// pointers are not applied. Limit of zero means the repository default.
type ListingFilter struct {
	City         string
	District     string
	Platform     string
	PropertyType string
	Status       string
	PriceMin     *int64
	PriceMax     *int64
	AreaMin      *float64
	AreaMax      *float64
	Limit        int
	Offset       int
}
