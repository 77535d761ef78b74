// Package logging builds the slog loggers used across screendoc and defines
// the standardized attribute keys that keep daemon output greppable.
//
// Console output renders through tint with colors when attached to a
// terminal; the json format uses slog's JSON handler with normalized keys.
// Log files under paths.log_dir are pruned by retention settings.
package logging
