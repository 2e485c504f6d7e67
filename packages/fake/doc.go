// Package fake generates throwaway test data for ${fake.<method>(...)}
// placeholders: names, emails, UUIDs, addresses, timestamps, and random
// numbers and strings. Output is intentionally non-deterministic.
package fake
