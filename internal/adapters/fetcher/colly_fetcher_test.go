package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)         {}
func (nopLogger) Warn(string, port.Fields)         {}
func (nopLogger) Error(string, error, port.Fields) {}
func (nopLogger) Debug(string, port.Fields)        {}
func (nopLogger) WithFields(port.Fields) port.LoggerPort {
	return nopLogger{}
}

func newTestFetcher(t *testing.T) *CollyFetcher {
	t.Helper()
	f, err := NewCollyFetcher(2, 0, nopLogger{})
	require.NoError(t, err)
	return f
}

func staticTarget(url string) domain.SourceTarget {
	return domain.SourceTarget{Platform: "mogi", URL: url, Hint: domain.HintStatic}
}

func TestCollyFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>trang kết quả</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	result := f.Fetch(context.Background(), staticTarget(srv.URL))

	require.True(t, result.OK(), "failure: %s", result.Failure)
	assert.Contains(t, string(result.Body), "trang kết quả")
	assert.Contains(t, result.ContentType, "text/html")
	assert.Equal(t, "mogi", result.Platform)
	assert.False(t, result.FetchedAt.IsZero())
}

func TestCollyFetchSendsJSONAccept(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ads":[]}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	target := domain.SourceTarget{Platform: "chotot", URL: srv.URL, Hint: domain.HintJSONAPI}
	result := f.Fetch(context.Background(), target)

	require.True(t, result.OK())
	assert.Equal(t, "application/json", gotAccept)
	assert.Contains(t, result.ContentType, "json")
}

func TestCollyFetchClassifiesStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   domain.FetchFailure
	}{
		{http.StatusForbidden, domain.FetchBlocked},
		{http.StatusTooManyRequests, domain.FetchBlocked},
		{http.StatusNotFound, domain.FetchNotFound},
		{http.StatusGone, domain.FetchNotFound},
		{http.StatusInternalServerError, domain.FetchNetworkError},
		{http.StatusBadGateway, domain.FetchNetworkError},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		f := newTestFetcher(t)
		result := f.Fetch(context.Background(), staticTarget(srv.URL))

		assert.False(t, result.OK())
		assert.Equal(t, tt.want, result.Failure, "status %d", tt.status)
		srv.Close()
	}
}

func TestCollyFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := newTestFetcher(t)
	result := f.Fetch(ctx, staticTarget(srv.URL))

	assert.False(t, result.OK())
	assert.Equal(t, domain.FetchTimeout, result.Failure)
}

func TestCollyFetchConnectionRefused(t *testing.T) {
	f := newTestFetcher(t)
	// Nothing listens here.
	result := f.Fetch(context.Background(), staticTarget("http://127.0.0.1:1/none"))

	assert.False(t, result.OK())
	assert.Equal(t, domain.FetchNetworkError, result.Failure)
	assert.True(t, result.Failure.Retryable())
}

func TestCollyFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(t)
	result := f.Fetch(ctx, staticTarget("http://127.0.0.1:1/none"))

	assert.False(t, result.OK())
	assert.NotEqual(t, domain.FetchOK, result.Failure)
}

func TestClassifyFetchError(t *testing.T) {
	assert.Equal(t, domain.FetchBlocked, classifyFetchError(403, errors.New("forbidden")))
	assert.Equal(t, domain.FetchBlocked, classifyFetchError(429, nil))
	assert.Equal(t, domain.FetchNotFound, classifyFetchError(404, nil))
	assert.Equal(t, domain.FetchTimeout, classifyFetchError(0, context.DeadlineExceeded))
	assert.Equal(t, domain.FetchNetworkError, classifyFetchError(0, errors.New("connection refused")))
	assert.Equal(t, domain.FetchNetworkError, classifyFetchError(500, nil))
}
