// Package config handles configuration loading, parsing, and validation
// from a YAML file, STUDY_ prefixed environment variables and defaults. It
// provides type-safe access to the settings needed by the storage backends,
// the generation pipeline, the scheduler and the HTTP server.
package config
