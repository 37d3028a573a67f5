// Package config holds the simulation configuration: time unit, logging,
// runtime tuning and the per-actor periods and constants. Files are read as
// YAML or TOML, and a small set of environment variables overrides them.
package config
