// Package ui formats human-readable console output.
//
// ConsoleCommandEventReporter echoes each git and codex invocation for
// verbose runs, and the section helpers size repository separators to the
// terminal.
package ui
