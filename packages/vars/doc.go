// Package vars holds the layered variable store that backs template
// resolution. Layers are ordered by precedence: per-invocation overrides,
// data-row values, suite variables, config layers (later-declared wins),
// persisted variables, and request-local Define defaults.
package vars
