// Package codexcli drives the codex command-line review tool through execshell.
//
// Client checks that the executable is installed and runs either the built-in
// review mode with a change selector or the exec mode with a synthesized
// prompt under read-only sandboxing. Output streams straight to the caller's
// writers and is never parsed; only the exit status is reported.
package codexcli
