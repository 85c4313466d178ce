package fetcher

import (
	"context"
	"errors"
	"net"

	"github.com/jian131/agent-bds/internal/core/domain"
)

// classifyFetchError maps a transport outcome onto the failure enum.
// Status wins when the server answered; otherwise the error shape
// decides. Anything unrecognized is a network error, the only
// retryable class.
func classifyFetchError(status int, err error) domain.FetchFailure {
	if status >= 400 {
		return classifyStatus(status)
	}
	if isTimeout(err) {
		return domain.FetchTimeout
	}
	return domain.FetchNetworkError
}

func classifyStatus(status int) domain.FetchFailure {
	switch status {
	case 403, 429:
		return domain.FetchBlocked
	case 404, 410:
		return domain.FetchNotFound
	default:
		return domain.FetchNetworkError
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
