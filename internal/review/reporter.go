package review

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/temirov/multireview/internal/repos/shared"
	"github.com/temirov/multireview/internal/ui"
)

const (
	sectionHeaderTemplateConstant     = "%s\n%s (%s)\n"
	summaryLineTemplateConstant       = "  %s\n"
	skippedLineTemplateConstant       = "  SKIPPED: %s\n"
	failedExitLineTemplateConstant    = "FAILED: %s (exit code %d)\n"
	failedErrorLineTemplateConstant   = "FAILED: %s: %v\n"
	warningLineTemplateConstant       = "warning: %s\n"
	promptSizeWarningTemplateConstant = "prompt for %s is %d characters and may exceed the command-line length limit"
	promptLengthLineTemplateConstant  = "prompt for %s: %d characters\n%s\n"
	finalSummaryTemplateConstant      = "%s complete: %d reviewed, %d skipped"
	finalFailedSuffixTemplateConstant = ", %d failed"
	finalSummaryLineTemplateConstant  = "%s\n"
	sectionSeparatorLineConstant      = "\n"
)

// ConsoleReporter renders repository sections and the final tally as plain text.
type ConsoleReporter struct {
	output    shared.Reporter
	errors    shared.Reporter
	ruleWidth int
}

// NewConsoleReporter constructs a reporter writing sections to output and warnings to errorOutput.
func NewConsoleReporter(output io.Writer, errorOutput io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		output:    shared.NewWriterReporter(output),
		errors:    shared.NewWriterReporter(errorOutput),
		ruleWidth: ui.RuleWidth(output),
	}
}

// Warning prints an advisory message on the error stream.
func (reporter *ConsoleReporter) Warning(message string) {
	reporter.errors.Printf(warningLineTemplateConstant, message)
}

// RepositoryStarted prints the section header for a repository.
func (reporter *ConsoleReporter) RepositoryStarted(repository shared.Repository, leadingSeparator bool) {
	if leadingSeparator {
		reporter.output.Printf(sectionSeparatorLineConstant)
	}
	reporter.output.Printf(sectionHeaderTemplateConstant, ui.Rule(reporter.ruleWidth), repository.Name, repository.Path)
}

// ChangeSummary prints the summary lines indented beneath the header.
func (reporter *ConsoleReporter) ChangeSummary(summary ChangeSummary) {
	for _, line := range summary.Lines {
		reporter.output.Printf(summaryLineTemplateConstant, line)
	}
}

// RepositorySkipped prints the skip reason.
func (reporter *ConsoleReporter) RepositorySkipped(reason SkipReason) {
	reporter.output.Printf(skippedLineTemplateConstant, reason)
}

// RepositoryFailed prints the failure line for a finished outcome.
func (reporter *ConsoleReporter) RepositoryFailed(outcome Outcome) {
	if outcome.Failure != nil {
		reporter.output.Printf(failedErrorLineTemplateConstant, outcome.Repository.Name, outcome.Failure)
		return
	}
	reporter.output.Printf(failedExitLineTemplateConstant, outcome.Repository.Name, outcome.ExitCode)
}

// PromptSizeExceeded warns that a prompt is larger than the advisory threshold.
func (reporter *ConsoleReporter) PromptSizeExceeded(repository shared.Repository, promptLength int) {
	reporter.Warning(fmt.Sprintf(promptSizeWarningTemplateConstant, repository.Name, promptLength))
}

// PromptBuilt prints the prompt length and text for verbose runs.
func (reporter *ConsoleReporter) PromptBuilt(repository shared.Repository, prompt string) {
	reporter.errors.Printf(promptLengthLineTemplateConstant, repository.Name, utf8.RuneCountInString(prompt), prompt)
}

// Finished prints the aggregate line for the run.
func (reporter *ConsoleReporter) Finished(action Action, tally Tally) {
	reporter.output.Printf(sectionSeparatorLineConstant)
	reporter.output.Printf(finalSummaryLineTemplateConstant, FormatSummary(action, tally))
}

// FormatSummary renders the aggregate line, appending the failure count when non-zero.
func FormatSummary(action Action, tally Tally) string {
	summary := fmt.Sprintf(finalSummaryTemplateConstant, action.Label(), tally.Reviewed, tally.Skipped)
	if tally.Failed > 0 {
		summary += fmt.Sprintf(finalFailedSuffixTemplateConstant, tally.Failed)
	}
	return summary
}
