// Package clean removes generated artifacts: the build tool's own clean
// target plus the packaged archive.
package clean
