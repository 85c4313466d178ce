package rabbitmq

import (
	"time"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// ListingEventDTO mirrors the listing_collected v1 JSON schema field
// for field. Both sides of the queue use it: the producer marshals it,
// the consumer unmarshals it after schema validation.
type ListingEventDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	PriceText  string   `json:"price_text,omitempty"`
	PriceVND   *int64   `json:"price_vnd,omitempty"`
	PricePerM2 *int64   `json:"price_per_m2,omitempty"`
	AreaText   string   `json:"area_text,omitempty"`
	AreaM2     *float64 `json:"area_m2,omitempty"`

	Address      string   `json:"address,omitempty"`
	Ward         string   `json:"ward,omitempty"`
	District     string   `json:"district,omitempty"`
	City         string   `json:"city,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationCell string   `json:"location_cell,omitempty"`

	ContactName string   `json:"contact_name,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	Zalo        []string `json:"zalo,omitempty"`
	Emails      []string `json:"emails,omitempty"`

	PropertyType string `json:"property_type,omitempty"`
	Bedrooms     *int   `json:"bedrooms,omitempty"`
	Bathrooms    *int   `json:"bathrooms,omitempty"`
	Floors       *int   `json:"floors,omitempty"`

	Images       []string `json:"images,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`

	SourcePlatform string     `json:"source_platform"`
	SourceURL      string     `json:"source_url"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	CollectedAt    time.Time  `json:"collected_at"`
}

func toEventDTO(l domain.Listing) ListingEventDTO {
	return ListingEventDTO{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,

		PriceText:  l.PriceText,
		PriceVND:   l.PriceVND,
		PricePerM2: l.PricePerM2,
		AreaText:   l.AreaText,
		AreaM2:     l.AreaM2,

		Address:      l.Address,
		Ward:         l.Ward,
		District:     l.District,
		City:         l.City,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		LocationCell: l.LocationCell,

		ContactName: l.ContactName,
		Phones:      l.Phones,
		Zalo:        l.Zalo,
		Emails:      l.Emails,

		PropertyType: string(l.PropertyType),
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		Floors:       l.Floors,

		Images:       l.Images,
		ThumbnailURL: l.ThumbnailURL,

		SourcePlatform: l.SourcePlatform,
		SourceURL:      l.SourceURL,
		PostedAt:       l.PostedAt,
		CollectedAt:    l.CollectedAt,
	}
}

// toDomain translates a validated event back into the domain. The event
// has no lifecycle state: everything coming off the queue is an active
// listing until storage learns otherwise.
func (dto ListingEventDTO) toDomain() domain.Listing {
	propertyType := domain.PropertyType(dto.PropertyType)
	if propertyType == "" {
		propertyType = domain.PropertyUnknown
	}

	return domain.Listing{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,

		PriceText:  dto.PriceText,
		PriceVND:   dto.PriceVND,
		PricePerM2: dto.PricePerM2,
		AreaText:   dto.AreaText,
		AreaM2:     dto.AreaM2,

		Address:      dto.Address,
		Ward:         dto.Ward,
		District:     dto.District,
		City:         dto.City,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		LocationCell: dto.LocationCell,

		ContactName: dto.ContactName,
		Phones:      dto.Phones,
		Zalo:        dto.Zalo,
		Emails:      dto.Emails,

		PropertyType: propertyType,
		Bedrooms:     dto.Bedrooms,
		Bathrooms:    dto.Bathrooms,
		Floors:       dto.Floors,

		Images:       dto.Images,
		ThumbnailURL: dto.ThumbnailURL,

		SourcePlatform: dto.SourcePlatform,
		SourceURL:      dto.SourceURL,
		PostedAt:       dto.PostedAt,
		CollectedAt:    dto.CollectedAt,
		Status:         domain.ListingActive,
	}
}
