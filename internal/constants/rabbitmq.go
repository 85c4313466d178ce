package constants

// Names of the RabbitMQ objects of the listing ingest pipeline.
const (
	ExchangeListings       = "listings_events"
	QueueValidatedListings = "validated_listings"
	RoutingKeyListingsSave = "db.listings.save"

	// Retry loop for the validated listings queue.
	ListingsRetryExchange = "validated_listings_retry_exchange"
	ListingsRetryQueue    = "validated_listings_retry_queue"

	// Where a message lands after exhausting its retries.
	ListingsFinalDLX           = "validated_listings_final_dlx"
	ListingsFinalDLQ           = "validated_listings_final_dlq"
	ListingsFinalDLQRoutingKey = "final.dead.letter"
)

// Contract headers and identifiers for queue payload validation.
const (
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"

	EventListingCollected        = "ListingCollectedEvent"
	EventListingCollectedVersion = "1.0.0"
)
