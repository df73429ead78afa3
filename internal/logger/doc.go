// Package logger provides a context-aware wrapper around zap's SugaredLogger.
//
// Services pull a named logger out of the context so that every line carries
// the phase it belongs to (sync, build, dist, clean) without threading a
// logger through call signatures.
package logger
