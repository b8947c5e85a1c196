package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/dmitrijs2005/docme/internal/netx"
)

// mapStatus converts a non-2xx answer into one of the common sentinels.
func mapStatus(code int, msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = http.StatusText(code)
	}

	var sentinel error
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		sentinel = common.ErrUnauthorized
	case code == http.StatusNotFound:
		sentinel = common.ErrNotFound
	case code == http.StatusConflict:
		sentinel = common.ErrConflict
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		sentinel = common.ErrValidation
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500:
		sentinel = common.ErrTransient
	default:
		return fmt.Errorf("unexpected status %d: %s", code, msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// mapTransport classifies an error returned by http.Client.Do. The original
// error stays in the chain so context cancellation remains detectable.
func mapTransport(err error) error {
	return fmt.Errorf("%w: %w", common.ErrTransient, err)
}

// mapObjectStore classifies a failed presigned transfer. Object storage
// answers say nothing about the API session, so a 401 or 403 there (bad
// signature, expired URL) is a failure of that one transfer and never
// ErrUnauthorized. Throttling and server errors stay transient.
func mapObjectStore(err error) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		return mapTransport(err)
	}
	switch {
	case se.Code == http.StatusRequestTimeout || se.Code == http.StatusTooManyRequests || se.Code >= 500:
		return fmt.Errorf("%w: object storage: %w", common.ErrTransient, err)
	default:
		return fmt.Errorf("object storage rejected transfer: %w", err)
	}
}
