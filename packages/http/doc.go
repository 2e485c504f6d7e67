// Package http executes resolved requests for purl.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts (client default and per-request)
//   - Redirect handling and optional insecure TLS
//   - Elapsed-time capture on every response
//   - Multipart form data support
package http
