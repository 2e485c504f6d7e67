// Package cmd implements the purl CLI commands using Cobra.
//
// Available commands:
//   - run: Execute request files
//   - suite: Execute a suite file (data rows crossed with a request chain)
//   - vars: Inspect and edit persistent variables
//   - validate: Check request and suite files without executing
//   - init: Create the .purl workspace with sample files
//   - version: Show version information
package cmd
