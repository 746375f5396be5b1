// Package dispatch spawns the external tools a scrub run depends on and
// captures what they print.
//
// A Runner blocks until the child exits. It captures stdout in full, passes
// stderr through to the configured writer, and reports the exit status. A
// non-zero exit is a Result, not an error: errors are reserved for children
// that could not be started or waited on.
//
// No timeout is applied. The context only lets an outer supervisor kill the
// child; the scrub job never cancels it on its own.
package dispatch
