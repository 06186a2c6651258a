// Package config loads the server configuration from a YAML or JSON file
// and VGL_* environment variables.
package config
