// Package extract pulls values out of HTTP responses for captures and for
// the left-hand side of assertions: status codes, elapsed time, headers,
// whole bodies, JSONPath matches, and regex matches. Misses are reported as
// not-found, never as errors.
package extract
