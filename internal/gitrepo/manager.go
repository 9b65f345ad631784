package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/multireview/internal/execshell"
)

const (
	revParseSubcommandConstant              = "rev-parse"
	showTopLevelFlagConstant                = "--show-toplevel"
	verifyFlagConstant                      = "--verify"
	quietFlagConstant                       = "--quiet"
	commitPeelSuffixConstant                = "^{commit}"
	statusSubcommandConstant                = "status"
	shortFlagConstant                       = "--short"
	logSubcommandConstant                   = "log"
	onelineFlagConstant                     = "--oneline"
	maxCountFlagTemplateConstant            = "--max-count=%d"
	rangeTemplateConstant                   = "%s..HEAD"
	showSubcommandConstant                  = "show"
	statFlagConstant                        = "--stat"
	noColorFlagConstant                     = "--no-color"
	lineSeparatorConstant                   = "\n"
	carriageReturnConstant                  = "\r"
	executorNotConfiguredMessageConstant    = "git executor not configured"
	requiredValueMessageConstant            = "value required"
	positiveValueMessageConstant            = "must be positive"
	invalidInputErrorTemplateConstant       = "%s: %s"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	repositoryPathFieldNameConstant         = "repository_path"
	referenceFieldNameConstant              = "reference"
	limitFieldNameConstant                  = "limit"
	resolveRootOperationNameConstant        = OperationName("ResolveRepositoryRoot")
	shortStatusOperationNameConstant        = OperationName("ShortStatus")
	commitsAheadOperationNameConstant       = OperationName("CommitsAhead")
	commitExistsOperationNameConstant       = OperationName("CommitExists")
	commitSummaryOperationNameConstant      = OperationName("CommitSummary")
)

// OperationName names a repository query supported by RepositoryManager.
type OperationName string

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor is the minimal interface required from execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InvalidInputError surfaces validation issues for query inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps git failures for a named query.
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

// RepositoryManager runs read-only git queries against a repository directory.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// ResolveRepositoryRoot reports the working tree root containing directoryPath. A directory
// outside any working tree yields false without an error; only failures to run git are errors.
func (manager *RepositoryManager) ResolveRepositoryRoot(executionContext context.Context, directoryPath string) (string, bool, error) {
	trimmedDirectory, validationError := requireValue(repositoryPathFieldNameConstant, directoryPath)
	if validationError != nil {
		return "", false, validationError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, showTopLevelFlagConstant},
		WorkingDirectory: trimmedDirectory,
	})
	if executionError != nil {
		if isCommandFailure(executionError) {
			return "", false, nil
		}
		return "", false, OperationError{Operation: resolveRootOperationNameConstant, Cause: executionError}
	}

	rootPath := strings.TrimSpace(executionResult.StandardOutput)
	if len(rootPath) == 0 {
		return "", false, nil
	}
	return filepath.Clean(rootPath), true, nil
}

// ShortStatus returns the short-form working tree status lines, preserving their status columns.
func (manager *RepositoryManager) ShortStatus(executionContext context.Context, repositoryPath string) ([]string, error) {
	trimmedRepositoryPath, validationError := requireValue(repositoryPathFieldNameConstant, repositoryPath)
	if validationError != nil {
		return nil, validationError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{statusSubcommandConstant, shortFlagConstant},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return nil, OperationError{Operation: shortStatusOperationNameConstant, Cause: executionError}
	}

	return splitOutputLines(executionResult.StandardOutput, 0), nil
}

// CommitsAhead lists up to limit one-line summaries of commits reachable from HEAD but not from baseReference.
func (manager *RepositoryManager) CommitsAhead(executionContext context.Context, repositoryPath string, baseReference string, limit int) ([]string, error) {
	trimmedRepositoryPath, validationError := requireValue(repositoryPathFieldNameConstant, repositoryPath)
	if validationError != nil {
		return nil, validationError
	}
	trimmedBaseReference, referenceError := requireValue(referenceFieldNameConstant, baseReference)
	if referenceError != nil {
		return nil, referenceError
	}
	if limit <= 0 {
		return nil, InvalidInputError{FieldName: limitFieldNameConstant, Message: positiveValueMessageConstant}
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			logSubcommandConstant,
			onelineFlagConstant,
			fmt.Sprintf(maxCountFlagTemplateConstant, limit),
			fmt.Sprintf(rangeTemplateConstant, trimmedBaseReference),
		},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return nil, OperationError{Operation: commitsAheadOperationNameConstant, Cause: executionError}
	}

	return splitOutputLines(executionResult.StandardOutput, limit), nil
}

// CommitExists reports whether commitReference resolves to a commit in the repository.
func (manager *RepositoryManager) CommitExists(executionContext context.Context, repositoryPath string, commitReference string) (bool, error) {
	trimmedRepositoryPath, validationError := requireValue(repositoryPathFieldNameConstant, repositoryPath)
	if validationError != nil {
		return false, validationError
	}
	trimmedCommitReference, referenceError := requireValue(referenceFieldNameConstant, commitReference)
	if referenceError != nil {
		return false, referenceError
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, verifyFlagConstant, quietFlagConstant, trimmedCommitReference + commitPeelSuffixConstant},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		if isCommandFailure(executionError) {
			return false, nil
		}
		return false, OperationError{Operation: commitExistsOperationNameConstant, Cause: executionError}
	}
	return true, nil
}

// CommitSummary returns the first lineLimit lines of the commit's one-line header and diff stat.
func (manager *RepositoryManager) CommitSummary(executionContext context.Context, repositoryPath string, commitReference string, lineLimit int) ([]string, error) {
	trimmedRepositoryPath, validationError := requireValue(repositoryPathFieldNameConstant, repositoryPath)
	if validationError != nil {
		return nil, validationError
	}
	trimmedCommitReference, referenceError := requireValue(referenceFieldNameConstant, commitReference)
	if referenceError != nil {
		return nil, referenceError
	}
	if lineLimit <= 0 {
		return nil, InvalidInputError{FieldName: limitFieldNameConstant, Message: positiveValueMessageConstant}
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{showSubcommandConstant, statFlagConstant, onelineFlagConstant, noColorFlagConstant, trimmedCommitReference},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return nil, OperationError{Operation: commitSummaryOperationNameConstant, Cause: executionError}
	}

	return splitOutputLines(executionResult.StandardOutput, lineLimit), nil
}

func requireValue(fieldName string, value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", InvalidInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return trimmedValue, nil
}

func isCommandFailure(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	return errors.As(executionError, &commandFailure)
}

// splitOutputLines drops blank lines and trailing whitespace; a positive limit truncates the result.
func splitOutputLines(output string, limit int) []string {
	rawLines := strings.Split(output, lineSeparatorConstant)
	lines := make([]string, 0, len(rawLines))
	for _, rawLine := range rawLines {
		line := strings.TrimRight(rawLine, carriageReturnConstant+" \t")
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) == limit {
			break
		}
	}
	return lines
}
