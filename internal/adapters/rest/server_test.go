package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields) {}
func (nopLogger) Warn(string, port.Fields) {}
func (nopLogger) Error(string, error, port.Fields) {}
func (nopLogger) Debug(string, port.Fields) {}
func (nopLogger) WithFields(port.Fields) port.LoggerPort { return nopLogger{} }

type fakeSearchUC struct {
	result *domain.SearchResult
	err    error
	gotReq domain.SearchRequest
}

func (f *fakeSearchUC) Execute(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	f.gotReq = req
	return f.result, f.err
}

type fakeStreamUC struct {
	events []domain.SearchEvent
	err    error
}

func (f *fakeStreamUC) Execute(_ context.Context, _ domain.SearchRequest, emit domain.EventSink) error {
	for _, ev := range f.events {
		if err := emit(ev); err != nil {
			return err
		}
	}
	return f.err
}

type fakeSimilarUC struct {
	listings []domain.Listing
	err      error
	gotQuery string
	gotID    string
}

func (f *fakeSimilarUC) ByQuery(_ context.Context, query string, _ int) ([]domain.Listing, error) {
	f.gotQuery = query
	return f.listings, f.err
}

func (f *fakeSimilarUC) ByListing(_ context.Context, id string, _ int) ([]domain.Listing, error) {
	f.gotID = id
	return f.listings, f.err
}

type fakeListUC struct {
	listings  []domain.Listing
	total     int64
	err       error
	gotFilter domain.ListingFilter
}

func (f *fakeListUC) Execute(_ context.Context, filter domain.ListingFilter) ([]domain.Listing, int64, error) {
	f.gotFilter = filter
	return f.listings, f.total, f.err
}

type fakeGetUC struct {
	listing *domain.Listing
	err     error
}

func (f *fakeGetUC) Execute(context.Context, string) (*domain.Listing, error) {
	return f.listing, f.err
}

type fakeDeleteUC struct {
	err     error
	gotID   string
	gotHard bool
}

func (f *fakeDeleteUC) Execute(_ context.Context, id string, hard bool) error {
	f.gotID = id
	f.gotHard = hard
	return f.err
}

type fakeAnalyticsUC struct {
	summary *domain.AnalyticsSummary
	market  []domain.MarketComparison
	runs    []domain.ScrapeRun
	err     error
}

func (f *fakeAnalyticsUC) Summary(context.Context, int) (*domain.AnalyticsSummary, error) {
	return f.summary, f.err
}

func (f *fakeAnalyticsUC) Market(context.Context) ([]domain.MarketComparison, error) {
	return f.market, f.err
}

func (f *fakeAnalyticsUC) RecentRuns(context.Context, int) ([]domain.ScrapeRun, error) {
	return f.runs, f.err
}

type serverFakes struct {
	search    *fakeSearchUC
	stream    *fakeStreamUC
	similar   *fakeSimilarUC
	list      *fakeListUC
	get       *fakeGetUC
	delete    *fakeDeleteUC
	analytics *fakeAnalyticsUC
}

func newTestServer(f *serverFakes) *Server {
	return NewServer(
		"8080",
		NewSearchHandler(f.search, f.stream, f.similar),
		NewListingHandler(f.list, f.get, f.delete, f.similar),
		NewAnalyticsHandler(f.analytics),
		NewHealthHandler(map[string]string{
			"db":     ComponentUp,
			"cache":  ComponentDisabled,
			"vector": ComponentUp,
			"llm":    ComponentDisabled,
		}),
		nopLogger{},
	)
}

func defaultFakes() *serverFakes {
	return &serverFakes{
		search:    &fakeSearchUC{result: &domain.SearchResult{}},
		stream:    &fakeStreamUC{},
		similar:   &fakeSimilarUC{},
		list:      &fakeListUC{},
		get:       &fakeGetUC{err: domain.ErrNotFound},
		delete:    &fakeDeleteUC{},
		analytics: &fakeAnalyticsUC{summary: &domain.AnalyticsSummary{}},
	}
}

func doRequest(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsComponents(t *testing.T) {
	s := newTestServer(defaultFakes())

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "ok",
		"components": {"db": "up", "cache": "disabled", "vector": "up", "llm": "disabled"}
	}`, rec.Body.String())
}

func TestUnknownRouteReturns404(t *testing.T) {
	s := newTestServer(defaultFakes())

	rec := doRequest(t, s, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
