package gateways

import "fmt"

// HTTPStatusError reports a non-redirect, non-200 response from the artifact
// server. It is surfaced verbatim and never retried.
type HTTPStatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.Code, e.URL, e.Status)
}

// RedirectLoopError reports a redirect chain that exceeded the hop bound
type RedirectLoopError struct {
	Hops int
	URL  string
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect chain exceeded %d hops resolving %s", e.Hops, e.URL)
}

// DigestMismatchError reports downloaded or cached bytes that do not match
// the expected digest. The staging artifact has already been discarded when
// this error is returned.
type DigestMismatchError struct {
	Expected string
	Actual   string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("digest mismatch: expected %s, got %s", e.Expected, e.Actual)
}
