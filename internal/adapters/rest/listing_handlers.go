package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/core/port/usecases_port"
)

// ListingHandler serves the stored-listing endpoints.
type ListingHandler struct {
	listUC    usecases_port.ListListingsUseCase
	getUC     usecases_port.GetListingUseCase
	deleteUC  usecases_port.DeleteListingUseCase
	similarUC usecases_port.FindSimilarUseCase
}

func NewListingHandler(
	listUC usecases_port.ListListingsUseCase,
	getUC usecases_port.GetListingUseCase,
	deleteUC usecases_port.DeleteListingUseCase,
	similarUC usecases_port.FindSimilarUseCase,
) *ListingHandler {
	return &ListingHandler{
		listUC:    listUC,
		getUC:     getUC,
		deleteUC:  deleteUC,
		similarUC: similarUC,
	}
}

// List handles GET /api/v1/listings.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	query := r.URL.Query()

	page := parseInt(query, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := parseInt(query, "per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := domain.ListingFilter{
		City:         query.Get("city"),
		District:     query.Get("district"),
		Platform:     query.Get("platform"),
		PropertyType: query.Get("property_type"),
		Status:       query.Get("status"),
		PriceMin:     parseInt64Ptr(query, "price_min"),
		PriceMax:     parseInt64Ptr(query, "price_max"),
		AreaMin:      parseFloatPtr(query, "area_min"),
		AreaMax:      parseFloatPtr(query, "area_max"),
		Limit:        perPage,
		Offset:       (page - 1) * perPage,
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "ListListings",
		"page":     page,
		"per_page": perPage,
	})

	listings, total, err := h.listUC.Execute(r.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrStorageDisabled) {
			WriteJSONError(w, http.StatusServiceUnavailable, "Listing storage is not configured")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve listings")
		return
	}

	handlerLogger.Info("Listings page served", port.Fields{
		"total_found":   total,
		"items_on_page": len(listings),
	})
	RespondWithJSON(w, http.StatusOK, ListingsPageResponse{
		Data:    toListingResponses(listings),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// Get handles GET /api/v1/listings/{listingID}.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		WriteJSONError(w, http.StatusBadRequest, "Listing ID is required")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":    "GetListing",
		"listing_id": listingID,
	})

	listing, err := h.getUC.Execute(r.Context(), listingID)
	if err != nil {
		h.writeListingError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponse(*listing))
}

// Delete handles DELETE /api/v1/listings/{listingID}. The default is a
// soft delete; ?hard=true removes the row and its vector.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		WriteJSONError(w, http.StatusBadRequest, "Listing ID is required")
		return
	}
	hard := r.URL.Query().Get("hard") == "true"

	handlerLogger := logger.WithFields(port.Fields{
		"handler":    "DeleteListing",
		"listing_id": listingID,
		"hard":       hard,
	})

	if err := h.deleteUC.Execute(r.Context(), listingID, hard); err != nil {
		h.writeListingError(w, handlerLogger, err)
		return
	}

	handlerLogger.Info("Listing deleted", nil)
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Similar handles GET /api/v1/listings/{listingID}/similar.
func (h *ListingHandler) Similar(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	listingID := chi.URLParam(r, "listingID")
	if listingID == "" {
		WriteJSONError(w, http.StatusBadRequest, "Listing ID is required")
		return
	}
	limit := parseInt(r.URL.Query(), "limit", 0)

	handlerLogger := logger.WithFields(port.Fields{
		"handler":    "SimilarListings",
		"listing_id": listingID,
	})

	listings, err := h.similarUC.ByListing(r.Context(), listingID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrVectorDisabled) || errors.Is(err, domain.ErrEmbedderDisabled) {
			WriteJSONError(w, http.StatusServiceUnavailable, "Similarity search is not configured")
			return
		}
		h.writeListingError(w, handlerLogger, err)
		return
	}

	handlerLogger.Info("Similar listings served", port.Fields{"total": len(listings)})
	RespondWithJSON(w, http.StatusOK, SimilarListingsResponse{
		Data:  toListingResponses(listings),
		Total: len(listings),
	})
}

func (h *ListingHandler) writeListingError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "Listing not found")
	case errors.Is(err, domain.ErrStorageDisabled):
		WriteJSONError(w, http.StatusServiceUnavailable, "Listing storage is not configured")
	default:
		logger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal error")
	}
}
