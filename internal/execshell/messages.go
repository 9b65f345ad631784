package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitShowTopLevelFlagConstant       = "--show-toplevel"
	gitVerifyFlagConstant             = "--verify"
	gitStatusSubcommandNameConstant   = "status"
	gitLogSubcommandNameConstant      = "log"
	gitShowSubcommandNameConstant     = "show"
	codexReviewSubcommandNameConstant = "review"
	codexExecSubcommandNameConstant   = "exec"
	flagPrefixConstant                = "-"
)

const (
	gitTopLevelStartTemplateConstant            = "Locating repository root for %s"
	gitTopLevelSuccessTemplateConstant          = "%s belongs to repository %s"
	gitTopLevelFailureTemplateConstant          = "%s is not inside a Git working tree (exit code %d%s)"
	gitTopLevelExecutionFailureTemplateConstant = "Unable to locate repository root for %s: %s"
	gitVerifyStartTemplateConstant              = "Resolving %s in %s"
	gitVerifySuccessTemplateConstant            = "%s in %s resolved to %s"
	gitVerifyFailureTemplateConstant            = "%s does not resolve in %s (exit code %d%s)"
	gitVerifyExecutionFailureTemplateConstant   = "Unable to resolve %s in %s: %s"
	gitStatusStartTemplateConstant              = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant            = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant            = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant   = "Unable to review working tree status in %s: %s"
	gitLogStartTemplateConstant                 = "Listing commits %s in %s"
	gitLogSuccessTemplateConstant               = "Listed commits %s in %s"
	gitLogFailureTemplateConstant               = "Failed to list commits %s in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant      = "Unable to list commits %s in %s: %s"
	gitShowStartTemplateConstant                = "Summarizing commit %s in %s"
	gitShowSuccessTemplateConstant              = "Summarized commit %s in %s"
	gitShowFailureTemplateConstant              = "Failed to summarize commit %s in %s (exit code %d%s)"
	gitShowExecutionFailureTemplateConstant     = "Unable to summarize commit %s in %s: %s"
	codexReviewStartTemplateConstant            = "Starting %s review in %s"
	codexReviewSuccessTemplateConstant          = "%s review finished in %s"
	codexReviewFailureTemplateConstant          = "%s review failed in %s (exit code %d%s)"
	codexReviewExecutionFailureTemplateConstant = "Unable to run %s review in %s: %s"
	codexExecStartTemplateConstant              = "Sending instructions to %s in %s"
	codexExecSuccessTemplateConstant            = "%s finished instructions in %s"
	codexExecFailureTemplateConstant            = "%s failed instructions in %s (exit code %d%s)"
	codexExecExecutionFailureTemplateConstant   = "Unable to send instructions to %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildCompletionMessage formats the message for a finished command, inspecting its output.
func (formatter CommandMessageFormatter) BuildCompletionMessage(command ShellCommand, result ExecutionResult) string {
	if result.ExitCode != 0 {
		return formatter.buildMessage(command, result, nil, messageStageFailure)
	}
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit {
		return formatter.describeGitMessage(command, result, failure, stage)
	}
	if len(command.Details.Arguments) > 0 {
		switch strings.TrimSpace(command.Details.Arguments[0]) {
		case codexReviewSubcommandNameConstant:
			return formatter.describeStagedTemplates(command, result, failure, stage, stageTemplates{
				start:            codexReviewStartTemplateConstant,
				success:          codexReviewSuccessTemplateConstant,
				failure:          codexReviewFailureTemplateConstant,
				executionFailure: codexReviewExecutionFailureTemplateConstant,
			}, string(command.Name))
		case codexExecSubcommandNameConstant:
			return formatter.describeStagedTemplates(command, result, failure, stage, stageTemplates{
				start:            codexExecStartTemplateConstant,
				success:          codexExecSuccessTemplateConstant,
				failure:          codexExecFailureTemplateConstant,
				executionFailure: codexExecExecutionFailureTemplateConstant,
			}, string(command.Name))
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	subcommand := strings.TrimSpace(arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describeStagedTemplates(command, result, failure, stage, stageTemplates{
			start:            gitStatusStartTemplateConstant,
			success:          gitStatusSuccessTemplateConstant,
			failure:          gitStatusFailureTemplateConstant,
			executionFailure: gitStatusExecutionFailureTemplateConstant,
		})
	case gitLogSubcommandNameConstant:
		return formatter.describeStagedTemplates(command, result, failure, stage, stageTemplates{
			start:            gitLogStartTemplateConstant,
			success:          gitLogSuccessTemplateConstant,
			failure:          gitLogFailureTemplateConstant,
			executionFailure: gitLogExecutionFailureTemplateConstant,
		}, formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:])))
	case gitShowSubcommandNameConstant:
		return formatter.describeStagedTemplates(command, result, failure, stage, stageTemplates{
			start:            gitShowStartTemplateConstant,
			success:          gitShowSuccessTemplateConstant,
			failure:          gitShowFailureTemplateConstant,
			executionFailure: gitShowExecutionFailureTemplateConstant,
		}, formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:])))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitShowTopLevelFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitTopLevelStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitTopLevelSuccessTemplateConstant, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
		case messageStageFailure:
			return fmt.Sprintf(gitTopLevelFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitTopLevelExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitVerifyFlagConstant) {
		reference := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitVerifyStartTemplateConstant, reference, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitVerifySuccessTemplateConstant, reference, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
		case messageStageFailure:
			return fmt.Sprintf(gitVerifyFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitVerifyExecutionFailureTemplateConstant, reference, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// describeStagedTemplates renders templates whose leading verbs are the subject values followed by the working directory.
func (formatter CommandMessageFormatter) describeStagedTemplates(command ShellCommand, result ExecutionResult, failure error, stage messageStage, templates stageTemplates, subjects ...string) string {
	values := make([]any, 0, len(subjects)+3)
	for _, subject := range subjects {
		values = append(values, subject)
	}
	values = append(values, formatter.describeWorkingDirectory(command))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		values = append(values, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, values...)
	case messageStageExecutionFailure:
		values = append(values, formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, values...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) lastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		trimmedArgument := strings.TrimSpace(arguments[index])
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
