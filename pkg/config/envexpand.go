package config

import "os"

// ExpandEnv expands environment variables in YAML content using Go's
// standard shell-style syntax. Supports both ${VAR} and $VAR. Missing
// variables expand to empty string — Validate catches required fields
// left empty by a missing reference.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
