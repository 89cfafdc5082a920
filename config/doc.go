// Package config resolves trackwork settings from layered sources.
//
// Values merge from four layers, later layers winning: built-in
// defaults, the global file ~/.config/trackwork/config.yaml, the local
// file .trackwork.yaml at the git root, and TRACKWORK_* environment
// variables. Command-line flags can override all four. Every resolved
// value remembers which layer it came from, so commands can show
// provenance alongside settings.
//
// Credentials never live here; those belong to each provider's
// environment variables and the OS keyring.
package config
