// Package config loads the run configuration for conf-authors.
//
// The configuration document supplies, per conference year, the digital
// library BASE_URL and listing PATH, and for years whose proceedings are split
// across tabs, the PARAMS values that select each tab. It is read once at
// startup into an immutable *Config that is passed to every component that
// needs it. YAML is the primary format; since JSON is valid YAML, a plain
// config.json with the same keys loads as well.
package config
