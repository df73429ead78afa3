// Package sync moves the fork checkout onto the latest upstream release:
// default branch, pull, tag fetch, then a detached checkout of the newest
// release tag.
package sync
