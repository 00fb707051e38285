package discordapi

import (
	"errors"
	"fmt"
)

// APIError is returned for any non-2xx Discord response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Discord API error %d: %s", e.StatusCode, e.Body)
}

// StatusCode returns the HTTP status of the APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
