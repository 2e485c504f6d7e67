// Package config manages the .purl workspace directory.
//
// It provides functionality for:
//   - Locating or creating the workspace next to request files
//   - Loading named config files (flat YAML variable mappings)
//   - Resolving the path of the persistent variable database
package config
