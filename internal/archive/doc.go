// Package archive builds the distributable zip: a flattened copy of the
// build output directory with exclusion globs, plus an append mode for
// adding the extension files to an existing archive.
package archive
