package loader

import "fmt"

// NetworkError reports that a request never produced a usable response:
// the URL could not be resolved, the connection failed, or the body
// stream broke mid-read.
type NetworkError struct {
	// URL is the resolved URL the request was issued for.
	URL string

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch for %q failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a response whose status code indicates failure.
//
// Only 200 is treated as success. Status 0 (produced by some non-HTTP
// transport schemes) is tolerated and does not raise this error.
type HTTPStatusError struct {
	// Status is the numeric response status code.
	Status int

	// StatusText is the reason phrase for the status code.
	StatusText string

	// URL is the final URL of the response, after any redirects.
	URL string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch for %q responded with %d: %s", e.URL, e.Status, e.StatusText)
}

// DecodeError reports that a response body was received in full but could
// not be converted into the requested representation, for example
// malformed JSON or XML, or an unsupported charset.
type DecodeError struct {
	// URL is the resolved URL the payload was fetched from.
	URL string

	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response for %q failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *DecodeError) Unwrap() error { return e.Err }
