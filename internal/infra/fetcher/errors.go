package fetcher

import "errors"

// Sentinel errors for source fetching operations.
// Callers use these to classify failures when deciding whether a source
// should count as a fetch error or a configuration problem.
var (
	// ErrInvalidURL indicates the endpoint URL is malformed or uses an
	// unsupported scheme. Only http:// and https:// are accepted.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the endpoint resolves to a private IP address.
	// This error prevents Server-Side Request Forgery (SSRF) attacks.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the
	// configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")
)
