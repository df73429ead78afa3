// Package model defines the exit-code taxonomy and the error type that
// carries an exit code from the operational services up to the CLI layer.
package model
