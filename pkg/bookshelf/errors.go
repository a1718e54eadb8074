package bookshelf

import "fmt"

// AuthError indicates the media-library service rejected our API key.
type AuthError struct {
	URL string
}

func (err *AuthError) Error() string {
	return fmt.Sprintf("bookshelf: unauthorized (check API key): %s", err.URL)
}

// NotFoundError indicates a library or item doesn't exist upstream.
type NotFoundError struct {
	Resource string
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("bookshelf: not found: %s", err.Resource)
}

// TransportError covers every other failure mode when talking to the
// media-library service: connection errors, timeouts, and unexpected status
// codes.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (err *TransportError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("bookshelf: request failed: %s: %v", err.URL, err.Err)
	}
	return fmt.Sprintf("bookshelf: unexpected status code %d: %s", err.StatusCode, err.URL)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}
