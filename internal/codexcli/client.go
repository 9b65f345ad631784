package codexcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/temirov/multireview/internal/execshell"
)

const (
	reviewSubcommandConstant                = "review"
	execSubcommandConstant                  = "exec"
	uncommittedFlagConstant                 = "--uncommitted"
	baseFlagConstant                        = "--base"
	commitFlagConstant                      = "--commit"
	modelFlagConstant                       = "--model"
	sandboxFlagConstant                     = "--sandbox"
	defaultExecutableConstant               = "codex"
	defaultSandboxConstant                  = "read-only"
	executorNotConfiguredMessageConstant    = "codex executor not configured"
	selectorRequiredMessageConstant         = "exactly one change selector required"
	requiredValueMessageConstant            = "value required"
	invalidInputErrorTemplateConstant       = "%s: %s"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	executableNotFoundTemplateConstant      = "%s not found in PATH: %s"
	repositoryPathFieldNameConstant         = "repository_path"
	promptFieldNameConstant                 = "prompt"
	selectorFieldNameConstant               = "selector"
	reviewOperationNameConstant             = OperationName("Review")
	execOperationNameConstant               = OperationName("Exec")
)

// OperationName names a codex invocation supported by the client.
type OperationName string

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// CodexExecutor is the minimal interface required from execshell.ShellExecutor.
type CodexExecutor interface {
	ExecuteCodex(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ExecutableLocator resolves an executable name on the search path.
type ExecutableLocator func(executable string) (string, error)

// InvalidInputError surfaces validation issues for invocation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError reports a codex invocation that could not be started or awaited.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ExecutableNotFoundError indicates the codex executable is not installed.
type ExecutableNotFoundError struct {
	Executable string
	Cause      error
}

// Error describes the missing executable.
func (notFoundError ExecutableNotFoundError) Error() string {
	return fmt.Sprintf(executableNotFoundTemplateConstant, notFoundError.Executable, notFoundError.Cause)
}

// Unwrap exposes the lookup failure.
func (notFoundError ExecutableNotFoundError) Unwrap() error {
	return notFoundError.Cause
}

// ChangeSelector picks the change set reviewed by the built-in review mode. Exactly one field is set.
type ChangeSelector struct {
	Uncommitted     bool
	BaseReference   string
	CommitReference string
}

// InvocationStreams receives the tool's output as it is produced.
type InvocationStreams struct {
	StandardOutput io.Writer
	StandardError  io.Writer
}

// ReviewRequest describes a built-in review invocation.
type ReviewRequest struct {
	RepositoryPath string
	Selector       ChangeSelector
	Model          string
	ExtraArguments []string
	Streams        InvocationStreams
}

// ExecRequest describes a free-form instruction invocation.
type ExecRequest struct {
	RepositoryPath string
	Prompt         string
	Sandbox        string
	Model          string
	ExtraArguments []string
	Streams        InvocationStreams
}

// Outcome captures the exit status of a finished invocation.
type Outcome struct {
	ExitCode int
}

// Succeeded reports whether the tool exited with status zero.
func (outcome Outcome) Succeeded() bool {
	return outcome.ExitCode == 0
}

// Client builds codex command lines and runs them through execshell.
type Client struct {
	executor   CodexExecutor
	executable string
	locator    ExecutableLocator
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithExecutable overrides the executable name checked by CheckAvailability.
func WithExecutable(executable string) ClientOption {
	return func(client *Client) {
		trimmedExecutable := strings.TrimSpace(executable)
		if len(trimmedExecutable) > 0 {
			client.executable = trimmedExecutable
		}
	}
}

// WithExecutableLocator replaces the PATH lookup used by CheckAvailability.
func WithExecutableLocator(locator ExecutableLocator) ClientOption {
	return func(client *Client) {
		if locator != nil {
			client.locator = locator
		}
	}
}

// NewClient constructs a codex client.
func NewClient(executor CodexExecutor, options ...ClientOption) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	client := &Client{executor: executor, executable: defaultExecutableConstant, locator: exec.LookPath}
	for _, option := range options {
		if option != nil {
			option(client)
		}
	}
	return client, nil
}

// Executable returns the executable name the client expects on the search path.
func (client *Client) Executable() string {
	return client.executable
}

// CheckAvailability verifies the codex executable can be found.
func (client *Client) CheckAvailability() error {
	if _, lookupError := client.locator(client.executable); lookupError != nil {
		return ExecutableNotFoundError{Executable: client.executable, Cause: lookupError}
	}
	return nil
}

// ReviewArguments renders the argument list for a built-in review invocation.
func ReviewArguments(request ReviewRequest) ([]string, error) {
	selectorArguments, selectorError := request.Selector.arguments()
	if selectorError != nil {
		return nil, selectorError
	}

	arguments := []string{reviewSubcommandConstant}
	arguments = append(arguments, request.ExtraArguments...)
	arguments = append(arguments, selectorArguments...)
	arguments = appendModel(arguments, request.Model)
	return arguments, nil
}

// ExecArguments renders the argument list for a free-form instruction invocation.
// The prompt is always the final argument.
func ExecArguments(request ExecRequest) ([]string, error) {
	if len(strings.TrimSpace(request.Prompt)) == 0 {
		return nil, InvalidInputError{FieldName: promptFieldNameConstant, Message: requiredValueMessageConstant}
	}

	sandbox := strings.TrimSpace(request.Sandbox)
	if len(sandbox) == 0 {
		sandbox = defaultSandboxConstant
	}

	arguments := []string{execSubcommandConstant}
	arguments = append(arguments, request.ExtraArguments...)
	arguments = append(arguments, sandboxFlagConstant, sandbox)
	arguments = appendModel(arguments, request.Model)
	arguments = append(arguments, request.Prompt)
	return arguments, nil
}

// Review runs the built-in review mode in the repository directory. A non-zero exit
// is reported through the outcome; only failures to run the tool are errors.
func (client *Client) Review(executionContext context.Context, request ReviewRequest) (Outcome, error) {
	if len(strings.TrimSpace(request.RepositoryPath)) == 0 {
		return Outcome{}, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	arguments, argumentsError := ReviewArguments(request)
	if argumentsError != nil {
		return Outcome{}, argumentsError
	}
	return client.run(executionContext, reviewOperationNameConstant, request.RepositoryPath, arguments, request.Streams)
}

// Exec runs codex exec with the prompt in the repository directory.
func (client *Client) Exec(executionContext context.Context, request ExecRequest) (Outcome, error) {
	if len(strings.TrimSpace(request.RepositoryPath)) == 0 {
		return Outcome{}, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	arguments, argumentsError := ExecArguments(request)
	if argumentsError != nil {
		return Outcome{}, argumentsError
	}
	return client.run(executionContext, execOperationNameConstant, request.RepositoryPath, arguments, request.Streams)
}

func (client *Client) run(executionContext context.Context, operation OperationName, repositoryPath string, arguments []string, streams InvocationStreams) (Outcome, error) {
	_, executionError := client.executor.ExecuteCodex(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repositoryPath,
		StandardOutputWriter: streams.StandardOutput,
		StandardErrorWriter:  streams.StandardError,
	})
	if executionError == nil {
		return Outcome{ExitCode: 0}, nil
	}
	if exitCode, exited := execshell.ExitCode(executionError); exited {
		return Outcome{ExitCode: exitCode}, nil
	}
	return Outcome{}, OperationError{Operation: operation, Cause: executionError}
}

func (selector ChangeSelector) arguments() ([]string, error) {
	baseReference := strings.TrimSpace(selector.BaseReference)
	commitReference := strings.TrimSpace(selector.CommitReference)

	selected := 0
	var arguments []string
	if selector.Uncommitted {
		selected++
		arguments = []string{uncommittedFlagConstant}
	}
	if len(baseReference) > 0 {
		selected++
		arguments = []string{baseFlagConstant, baseReference}
	}
	if len(commitReference) > 0 {
		selected++
		arguments = []string{commitFlagConstant, commitReference}
	}
	if selected != 1 {
		return nil, InvalidInputError{FieldName: selectorFieldNameConstant, Message: selectorRequiredMessageConstant}
	}
	return arguments, nil
}

func appendModel(arguments []string, model string) []string {
	trimmedModel := strings.TrimSpace(model)
	if len(trimmedModel) == 0 {
		return arguments
	}
	return append(arguments, modelFlagConstant, trimmedModel)
}
