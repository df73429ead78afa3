// Package dist assembles the distributable archive: the minified build
// output flattened and filtered, with the extension-specific files appended
// on top.
package dist
