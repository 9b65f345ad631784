// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor runs git and the codex review tool with an explicit working
// directory per invocation, logs each command through zap, and publishes
// lifecycle events to CommandEventObserver implementations. OSCommandRunner
// is the os/exec backed runner; tests substitute recording runners.
package execshell
