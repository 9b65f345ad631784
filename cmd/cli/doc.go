// Package cli constructs the multireview command-line interface, wiring the
// review command, configuration loader, and structured logging primitives.
// It exposes helpers to build application instances and to execute the
// command with process arguments.
package cli
