// Package output renders run results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable report
//   - HTML: Self-contained report file
//   - JUnit: XML format for CI integration
//
// The console formatter also prints a latency distribution summary for
// suite runs.
package output
