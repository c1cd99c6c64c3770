package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNotFound matches any 404 response
	ErrNotFound = errors.New("not found")
	// ErrVersion matches an optimistic version conflict
	ErrVersion = errors.New("version conflict")
	// ErrEmailInUse matches account creation with an email already registered
	ErrEmailInUse = errors.New("a user with this email already exists")
	// ErrUnauthorized matches 401 and 403 responses
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a non-2xx API response
type Error struct {
	Status       int    `json:"status"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	VersionError bool   `json:"versionError"`
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%d: %s [type: %s]", e.Status, e.Message, e.Type)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Is lets callers test API errors against the package sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrVersion:
		return e.VersionError
	case ErrEmailInUse:
		return e.Type == "user_already_exists"
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	// The envelope's status wins only when present
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode
	}
	return apiErr
}
