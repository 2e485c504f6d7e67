// Package runner executes request files and suites.
//
// It provides functionality for:
//   - Running a single request file through resolve, send, capture, assert
//   - Running suites: data source rows crossed with ordered request chains
//   - Layering config, suite, row, and persistent variables
//   - Flushing captured values to the persistent store as they appear
//
// Suite execution is strictly sequential so captures from one request are
// visible to the next one in the chain.
package runner
