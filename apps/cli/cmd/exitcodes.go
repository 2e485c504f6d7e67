package cmd

// Exit codes for the purl CLI
const (
	// ExitSuccess indicates every request completed and asserted clean
	ExitSuccess = 0

	// ExitRunFailure indicates request errors or failed assertions
	ExitRunFailure = 1

	// ExitParseError indicates a request or suite file failed to load
	ExitParseError = 2

	// ExitConfigError indicates a workspace or config problem
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
