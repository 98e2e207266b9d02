package router

import (
	"errors"
	"fmt"
)

// Sentinel errors for navigation and registration failures.
var (
	// ErrRouteNotFound indicates navigation to a name that was never registered.
	ErrRouteNotFound = errors.New("router: route not found")

	// ErrDuplicateRoute indicates RegisterRoute was called twice with one name.
	ErrDuplicateRoute = errors.New("router: route already registered")

	// ErrInvalidRoute indicates a registration with an empty name or nil factory.
	ErrInvalidRoute = errors.New("router: invalid route")
)

// RouteError reports which operation failed for which route. It wraps one of
// the sentinel errors, so errors.Is works on it.
type RouteError struct {
	Op    string // Operation that failed (e.g., "push", "register")
	Route string // Route name the operation targeted
	Err   error  // Underlying error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("%v: %s %q", e.Err, e.Op, e.Route)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

func newRouteError(op, route string, err error) *RouteError {
	return &RouteError{Op: op, Route: route, Err: err}
}

// IsRouteNotFound checks if an error indicates an unregistered route.
func IsRouteNotFound(err error) bool {
	return errors.Is(err, ErrRouteNotFound)
}

// IsDuplicateRoute checks if an error indicates a repeated registration.
func IsDuplicateRoute(err error) bool {
	return errors.Is(err, ErrDuplicateRoute)
}
