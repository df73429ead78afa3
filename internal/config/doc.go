// Package config defines the tool settings — upstream checkout location,
// patch set, build tool targets and archive layout — and provides helpers to
// load, validate and save them in YAML format.
//
// Every field has a default matching the stock fork layout, so a missing
// configuration file is not an error.
package config
