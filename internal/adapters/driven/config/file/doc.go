// Package file provides a TOML file-based implementation of the config
// store port.
//
// Configuration lives at ~/.quarry/config.toml by default. The file is
// read once at construction and nested tables are flattened into
// dot-notation keys, so [provider] api_key becomes "provider.api_key".
// The store is read-only; editing the file requires a restart.
package file
