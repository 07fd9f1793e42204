package openai

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/resilience"
)

// classifyTransportError decides per attempt. Rate limiting is never
// retried locally: the provider told us to back off, so the caller gets
// the signal instead of a hammering retry loop.
func classifyTransportError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{Retry: false, CountAsFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusTooManyRequests {
			return resilience.Verdict{Retry: false, CountAsFailure: true}
		}
		return resilience.Verdict{
			Retry:          isRetryableStatus(statusErr.StatusCode),
			CountAsFailure: statusErr.StatusCode >= 500,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retry: true, CountAsFailure: true}
	}

	// Malformed model output and other local errors.
	return resilience.Verdict{Retry: false, CountAsFailure: false}
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// translateError maps transport failures to the domain error kinds the
// classification engine keys its behavior on.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return domain.WrapError(domain.ErrLLMTimeout, classifyOperation, err)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return domain.WrapError(domain.ErrProviderRateLimited, classifyOperation, err)
		case http.StatusGatewayTimeout:
			return domain.WrapError(domain.ErrLLMTimeout, classifyOperation, err)
		}
	}

	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, classifyOperation, err)
	}
	return err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
