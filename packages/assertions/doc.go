// Package assertions evaluates assert expressions against HTTP responses.
//
// An expression is a capture-style source optionally followed by an operator
// and an expected value:
//
//	@status |==| 201
//	@body jsonpath $.email |contains| @example.com
//	@headers['Content-Type'] [!=] text/html
//	@body jsonpath $.id
//
// Without an operator the assertion checks that the source resolved to a
// non-null value. The expected side may contain ${...} placeholders.
// Assertions never abort request execution; every evaluation produces a
// structured result, pass or fail.
package assertions
