package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/core/port/usecases_port"
)

const sseHeartbeatInterval = 15 * time.Second

// SearchHandler serves the live search endpoints: batch, SSE stream
// and vector similarity.
type SearchHandler struct {
	searchUC  usecases_port.SearchListingsUseCase
	streamUC  usecases_port.StreamSearchUseCase
	similarUC usecases_port.FindSimilarUseCase
}

func NewSearchHandler(
	searchUC usecases_port.SearchListingsUseCase,
	streamUC usecases_port.StreamSearchUseCase,
	similarUC usecases_port.FindSimilarUseCase,
) *SearchHandler {
	return &SearchHandler{
		searchUC:  searchUC,
		streamUC:  streamUC,
		similarUC: similarUC,
	}
}

// Search handles POST /api/v1/search. With realtime set in the body it
// behaves exactly like the stream endpoint.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	body, ok := h.decodeSearchBody(w, r)
	if !ok {
		return
	}

	if body.Realtime {
		h.stream(w, r, body.toDomain())
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler": "Search",
		"query":   body.Query,
	})

	result, err := h.searchUC.Execute(r.Context(), body.toDomain())
	if err != nil {
		if errors.Is(err, domain.ErrNoPlatforms) {
			handlerLogger.Warn("Search rejected, no platforms configured", nil)
			WriteJSONError(w, http.StatusServiceUnavailable, "No platforms configured")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	handlerLogger.Info("Search answered", port.Fields{
		"total":      result.Total,
		"from_cache": result.FromCache,
	})
	RespondWithJSON(w, http.StatusOK, toSearchResponse(result))
}

// SearchStream handles POST /api/v1/search/stream.
func (h *SearchHandler) SearchStream(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decodeSearchBody(w, r)
	if !ok {
		return
	}
	h.stream(w, r, body.toDomain())
}

// SearchSimilar handles GET /api/v1/search/similar?q=.
func (h *SearchHandler) SearchSimilar(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteJSONError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	limit := parseInt(r.URL.Query(), "limit", 0)

	handlerLogger := logger.WithFields(port.Fields{
		"handler": "SearchSimilar",
		"query":   query,
	})

	listings, err := h.similarUC.ByQuery(r.Context(), query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrVectorDisabled) || errors.Is(err, domain.ErrEmbedderDisabled) {
			handlerLogger.Warn("Similarity search unavailable", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusServiceUnavailable, "Similarity search is not configured")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Similarity search failed")
		return
	}

	handlerLogger.Info("Similarity search answered", port.Fields{"total": len(listings)})
	RespondWithJSON(w, http.StatusOK, SimilarListingsResponse{
		Data:  toListingResponses(listings),
		Total: len(listings),
	})
}

func (h *SearchHandler) decodeSearchBody(w http.ResponseWriter, r *http.Request) (SearchRequestBody, bool) {
	logger := contextkeys.LoggerFromContext(r.Context())

	var body SearchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("Invalid request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return SearchRequestBody{}, false
	}
	if strings.TrimSpace(body.Query) == "" {
		WriteJSONError(w, http.StatusBadRequest, "Field 'query' is required")
		return SearchRequestBody{}, false
	}
	return body, true
}

// stream runs the pipeline and pushes its frames as server-sent
// events. Comment lines go out every 15 seconds so idle proxies keep
// the connection open.
func (h *SearchHandler) stream(w http.ResponseWriter, r *http.Request, req domain.SearchRequest) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{
		"handler": "SearchStream",
		"query":   req.Query,
	})

	flusher, ok := w.(http.Flusher)
	if !ok {
		handlerLogger.Error("Response writer does not support streaming", nil, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ctx := r.Context()
	events := make(chan domain.SearchEvent)
	done := make(chan struct{})

	go func() {
		defer close(events)
		err := h.streamUC.Execute(ctx, req, func(event domain.SearchEvent) error {
			select {
			case events <- event:
				return nil
			case <-done:
				return fmt.Errorf("client disconnected")
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			handlerLogger.Warn("Stream pipeline finished with error", port.Fields{"error": err.Error()})
		}
	}()

	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case event, open := <-events:
			if !open {
				handlerLogger.Info("Stream finished", nil)
				return
			}
			if err := writeSSEFrame(w, event); err != nil {
				handlerLogger.Warn("Client gone, closing stream", port.Fields{"error": err.Error()})
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Comment lines keep the connection alive without reaching
			// the client-side event handlers.
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-ctx.Done():
			handlerLogger.Info("SSE client disconnected", nil)
			return
		}
	}
}

// writeSSEFrame serializes one pipeline event as an SSE frame. The
// event type rides on the event: line, the payload shape depends on it.
func writeSSEFrame(w io.Writer, event domain.SearchEvent) error {
	var payload interface{}

	switch event.Type {
	case domain.EventResult:
		if event.Listing == nil {
			return nil
		}
		payload = toListingResponse(*event.Listing)
	case domain.EventComplete:
		platforms := event.Platforms
		if platforms == nil {
			platforms = []string{}
		}
		payload = completeFrame{
			Total:        event.Total,
			SearchTimeMS: event.SearchTimeMS,
			Platforms:    platforms,
		}
	case domain.EventError:
		payload = errorFrame{Message: event.Message}
	default:
		payload = statusFrame{
			Platform: event.Platform,
			Message:  event.Message,
			Count:    event.Count,
			Failure:  string(event.Failure),
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}
