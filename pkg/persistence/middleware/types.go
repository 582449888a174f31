// Package middleware provides composable wrappers around session stores.
package middleware

import "github.com/vicinitylabs/vicinity/pkg/ports"

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies middlewares outermost-first: Chain(store, a, b) wraps the
// store with b, then a.
func Chain(store ports.SessionStore, middlewares ...Middleware) ports.SessionStore {
	for i := len(middlewares) - 1; i >= 0; i-- {
		store = middlewares[i](store)
	}
	return store
}
