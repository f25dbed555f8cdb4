// Package middleware provides HTTP middleware for CORS, request logging, and panic recovery.
package middleware

import "net/http"

// Chain composes mws into a single middleware. The first entry is outermost,
// so it sees the request first and the response last.
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
