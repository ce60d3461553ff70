package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(status)
	}

	switch {
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrServerUnavailable, status, body)
	default:
		return fmt.Errorf("http %d: %s", status, body)
	}
}
