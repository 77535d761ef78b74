// Package config loads, normalizes, and validates the TOML configuration
// that drives the screendoc daemon and CLI.
//
// Configuration is resolved from an explicit path, then
// ~/.config/screendoc/config.toml, then ./screendoc.toml. Missing files fall
// back to repository defaults so the CLI stays usable before 'config init'.
package config
