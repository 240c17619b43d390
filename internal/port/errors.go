package port

import "fmt"

// ProviderError is an HTTP-level rejection from the data provider. A client
// error (4xx) means the addressed dialect refused the query and triggers the
// dialect fallback; a server error (5xx) is fatal and surfaced as-is.
type ProviderError struct {
	StatusCode int
	URL        string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d for %s", e.StatusCode, e.URL)
}

// ClientError reports whether the provider rejected the request (4xx).
func (e *ProviderError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode <= 499
}

// ServerError reports whether the provider itself failed (5xx).
func (e *ProviderError) ServerError() bool {
	return e.StatusCode >= 500
}
