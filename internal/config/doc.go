// Package config locates, parses and validates the wallhelper configuration.
//
// The document is flat: four daypart boundary hours (morning, day, evening, night;
// defaults 6/12/18/24), wallpaper_command, always_change and update_interval. It is read
// from config.toml, or config.yaml when no TOML file exists. Validate reports every
// missing or mistyped key in one pass rather than stopping at the first.
package config
