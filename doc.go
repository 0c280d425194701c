// Package identity implements an authentication and authorization core:
// signed access and refresh credentials, password
// verification, role based scope checks, single-use email verification
// tokens, and a scheduled sweep that retires subjects whose verification
// lapsed.
//
// The package is transport agnostic. Operations return tagged errors instead
// of status codes; mapping them to HTTP responses is the caller's job.
package identity
