// Package config loads, normalizes, and validates rollcall configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the daemon and CLI need (the two endpoint locations, operator identity,
// and resync timing) so components receive an explicit configuration object
// at construction rather than reaching into ambient state.
package config
