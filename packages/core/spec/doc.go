// Package spec defines the YAML request and suite documents purl executes,
// along with loading, decoding, and schema validation. Documents are loaded
// as plain nested data first so the template resolver can rewrite them, then
// decoded into typed specs.
package spec
