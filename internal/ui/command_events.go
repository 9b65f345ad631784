package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/temirov/multireview/internal/execshell"
)

const (
	commandStartedLineTemplateConstant          = "$ %s%s\n"
	commandFailedLineTemplateConstant           = "  exit code %d%s\n"
	commandExecutionFailureLineTemplateConstant = "  could not run %s: %s\n"
	workingDirectorySuffixTemplateConstant      = " (in %s)"
	standardErrorSuffixTemplateConstant         = ": %s"
	elidedArgumentTemplateConstant              = "%s... (%d characters)"
	commandArgumentsJoinSeparatorConstant       = " "
	unknownFailureMessageConstant               = "unknown error"
	emptyStringConstant                         = ""
	quotableCharactersConstant                  = " \t\n\"'`$\\"
	defaultArgumentDisplayLimitConstant         = 72
)

// CommandEventFormatter renders shell commands as copyable command lines.
type CommandEventFormatter struct {
	// ArgumentDisplayLimit bounds how many characters of a single argument are shown; zero selects the default.
	ArgumentDisplayLimit int
}

// FormatCommandLine quotes arguments as needed and elides long ones such as prompts.
func (formatter CommandEventFormatter) FormatCommandLine(command execshell.ShellCommand) string {
	commandParts := make([]string, 0, len(command.Details.Arguments)+1)
	commandParts = append(commandParts, string(command.Name))
	for _, argument := range command.Details.Arguments {
		commandParts = append(commandParts, formatter.formatArgument(argument))
	}
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func (formatter CommandEventFormatter) formatArgument(argument string) string {
	displayLimit := formatter.ArgumentDisplayLimit
	if displayLimit <= 0 {
		displayLimit = defaultArgumentDisplayLimitConstant
	}

	displayed := argument
	if runes := []rune(argument); len(runes) > displayLimit {
		displayed = fmt.Sprintf(elidedArgumentTemplateConstant, string(runes[:displayLimit]), len(runes))
	}
	if len(displayed) == 0 || strings.ContainsAny(displayed, quotableCharactersConstant) {
		return strconv.Quote(displayed)
	}
	return displayed
}

func (formatter CommandEventFormatter) formatWorkingDirectorySuffix(command execshell.ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	firstLine, _, _ := strings.Cut(trimmedStandardError, "\n")
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, firstLine)
}

// ConsoleCommandEventReporter writes every command to a console writer, used for verbose runs.
type ConsoleCommandEventReporter struct {
	writer    io.Writer
	formatter CommandEventFormatter
	mutex     sync.Mutex
}

// NewConsoleCommandEventReporter constructs a reporter writing to the provided writer.
func NewConsoleCommandEventReporter(writer io.Writer) *ConsoleCommandEventReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ConsoleCommandEventReporter{writer: writer}
}

// CommandStarted implements execshell.CommandEventObserver by printing the command line.
func (reporter *ConsoleCommandEventReporter) CommandStarted(command execshell.ShellCommand) {
	if reporter == nil {
		return
	}
	reporter.printf(commandStartedLineTemplateConstant, reporter.formatter.FormatCommandLine(command), reporter.formatter.formatWorkingDirectorySuffix(command))
}

// CommandCompleted implements execshell.CommandEventObserver; only non-zero exits are printed.
func (reporter *ConsoleCommandEventReporter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if reporter == nil || result.ExitCode == 0 {
		return
	}
	reporter.printf(commandFailedLineTemplateConstant, result.ExitCode, reporter.formatter.formatStandardErrorSuffix(result.StandardError))
}

// CommandExecutionFailed implements execshell.CommandEventObserver by printing the failure cause.
func (reporter *ConsoleCommandEventReporter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if reporter == nil {
		return
	}
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	reporter.printf(commandExecutionFailureLineTemplateConstant, command.Name, failureMessage)
}

func (reporter *ConsoleCommandEventReporter) printf(format string, arguments ...any) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, format, arguments...)
}
