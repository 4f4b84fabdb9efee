// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/listonic-sync/internal/service"
)

// GetAndValidateURLParam extracts, decodes, and validates a URL parameter from the request.
// The value must not be empty and must not contain whitespace.
func GetAndValidateURLParam(r *http.Request, paramName string) (string, error) {
	encodedValue := chi.URLParam(r, paramName)

	decoded, err := url.PathUnescape(encodedValue)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL encoding in %s", service.ErrInvalidInput, paramName)
	}

	if strings.TrimSpace(decoded) == "" {
		return "", fmt.Errorf("%w: %s cannot be empty", service.ErrInvalidInput, paramName)
	}

	if strings.ContainsAny(decoded, " \t\n\r") {
		return "", fmt.Errorf("%w: %s cannot contain whitespace", service.ErrInvalidInput, paramName)
	}

	return decoded, nil
}

// GetIDParam extracts a positive integer id from the URL
func GetIDParam(r *http.Request, paramName string) (int64, error) {
	raw, err := GetAndValidateURLParam(r, paramName)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", service.ErrInvalidInput, paramName)
	}
	return id, nil
}
