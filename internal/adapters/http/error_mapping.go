package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

func mapDomainError(err error) (int, string) {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "AUTHENTICATION_ERROR"
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case domain.IsKind(err, domain.ErrProviderRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"
	case domain.IsKind(err, domain.ErrLLMTimeout):
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
