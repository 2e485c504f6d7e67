// Package template rewrites ${...} placeholders in strings and nested
// structures. Placeholders resolve through the layered variable store or,
// for ${fake.<method>(...)} spans, through the fake-data generator. Values
// may reference other variables up to a bounded depth; unresolved names and
// reference cycles are fatal errors, never passed through as literal text.
package template
