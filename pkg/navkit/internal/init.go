// Package internal contains shared infrastructure for navkit: loggers and
// metric definitions. Types and functions in this package are not part of
// the public API.
package internal
