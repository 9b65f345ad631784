package review

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/temirov/multireview/internal/repos/shared"
	pathutils "github.com/temirov/multireview/internal/utils/path"
)

const (
	actionOptionNameConstant                 = "action"
	modeOptionNameConstant                   = "mode"
	defaultTargetDirectoryConstant           = "."
	unsupportedValueTemplateConstant         = "unsupported %s %q (accepted: %s)"
	acceptedValuesSeparatorConstant          = ", "
	missingDependencyTemplateConstant        = "%s is required but was not found in PATH"
	planInputRequiredMessageConstant         = "plan action requires --file or instruction text"
	baseRequiredMessageConstant              = "branch mode requires --base"
	commitRequiredMessageConstant            = "commit mode requires --commit"
	fileSystemMissingMessageConstant         = "filesystem not configured"
	planFileRoleConstant                     = "plan file"
	targetDirectoryRoleConstant              = "target directory"
	pathMissingTemplateConstant              = "%s %s does not exist"
	pathIsDirectoryTemplateConstant          = "%s %s is a directory"
	pathNotDirectoryTemplateConstant         = "%s %s is not a directory"
	pathUnreadableTemplateConstant           = "%s %s could not be read: %w"
	pathUnresolvableTemplateConstant         = "%s %s could not be resolved: %w"
	ignoredPlanFileWarningTemplateConstant   = "--file is only used with --action plan; ignoring %s"
	ignoredPlanModeWarningTemplateConstant   = "--mode %s has no effect with --action plan"
	ignoredPlanBaseWarningTemplateConstant   = "--base %s has no effect with --action plan"
	ignoredPlanCommitWarningTemplateConstant = "--commit %s has no effect with --action plan"
	ignoredBaseWarningTemplateConstant       = "--base %s is only used with --mode branch; ignoring it"
	ignoredCommitWarningTemplateConstant     = "--commit %s is only used with --mode commit; ignoring it"
)

var (
	// ErrPlanInputRequired indicates a plan review without a plan file or instruction text.
	ErrPlanInputRequired = errors.New(planInputRequiredMessageConstant)
	// ErrBaseReferenceRequired indicates branch mode without a base reference.
	ErrBaseReferenceRequired = errors.New(baseRequiredMessageConstant)
	// ErrCommitReferenceRequired indicates commit mode without a commit reference.
	ErrCommitReferenceRequired = errors.New(commitRequiredMessageConstant)
	// ErrFileSystemNotConfigured indicates the resolver lacks a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
)

// RawOptions holds the command-line values before validation.
type RawOptions struct {
	Action          string
	Mode            string
	BaseReference   string
	CommitReference string
	PlanFilePath    string
	TargetDirectory string
	Model           string
	Verbose         bool
	Instructions    string
}

// AvailabilityCheck verifies the external review tool can be run.
type AvailabilityCheck func() error

// OptionsResolver validates RawOptions into an InvocationConfig.
type OptionsResolver struct {
	FileSystem        shared.FileSystem
	HomeExpander      *pathutils.HomeExpander
	CheckAvailability AvailabilityCheck
	Executable        string
}

// Resolution is a validated configuration plus the warnings produced while discarding irrelevant options.
type Resolution struct {
	Config   InvocationConfig
	Warnings []string
}

// Resolve applies defaults, discards options that do not apply to the selected action and mode
// with a warning, and validates what remains. The review tool's availability is checked first.
func (resolver OptionsResolver) Resolve(raw RawOptions) (Resolution, error) {
	if resolver.FileSystem == nil {
		return Resolution{}, ErrFileSystemNotConfigured
	}
	if resolver.CheckAvailability != nil {
		if availabilityError := resolver.CheckAvailability(); availabilityError != nil {
			return Resolution{}, MissingDependencyError{Executable: resolver.executable(), Cause: availabilityError}
		}
	}

	action, actionError := ParseAction(raw.Action)
	if actionError != nil {
		return Resolution{}, actionError
	}
	mode, modeError := ParseMode(raw.Mode)
	if modeError != nil {
		return Resolution{}, modeError
	}

	config := InvocationConfig{
		Action:          action,
		Mode:            mode,
		BaseReference:   strings.TrimSpace(raw.BaseReference),
		CommitReference: strings.TrimSpace(raw.CommitReference),
		PlanFilePath:    strings.TrimSpace(raw.PlanFilePath),
		Model:           strings.TrimSpace(raw.Model),
		Verbose:         raw.Verbose,
		Instructions:    strings.TrimSpace(raw.Instructions),
	}

	var warnings []string
	if action == ActionPlan {
		warnings = discardPlanIrrelevant(&config)
	} else {
		warnings = discardReviewIrrelevant(&config)
	}

	if action == ActionPlan {
		if len(config.PlanFilePath) == 0 && len(config.Instructions) == 0 {
			return Resolution{}, ErrPlanInputRequired
		}
		if len(config.PlanFilePath) > 0 {
			planPath, planContent, planError := resolver.loadPlanFile(config.PlanFilePath)
			if planError != nil {
				return Resolution{}, planError
			}
			config.PlanFilePath = planPath
			config.PlanContent = planContent
		}
	} else {
		if config.Mode == ModeBranch && len(config.BaseReference) == 0 {
			return Resolution{}, ErrBaseReferenceRequired
		}
		if config.Mode == ModeCommit && len(config.CommitReference) == 0 {
			return Resolution{}, ErrCommitReferenceRequired
		}
	}

	targetDirectory, targetError := resolver.resolveTargetDirectory(raw.TargetDirectory)
	if targetError != nil {
		return Resolution{}, targetError
	}
	config.TargetDirectory = targetDirectory

	return Resolution{Config: config, Warnings: warnings}, nil
}

func discardPlanIrrelevant(config *InvocationConfig) []string {
	var warnings []string
	if config.Mode != DefaultMode {
		warnings = append(warnings, fmt.Sprintf(ignoredPlanModeWarningTemplateConstant, config.Mode))
		config.Mode = DefaultMode
	}
	if len(config.BaseReference) > 0 {
		warnings = append(warnings, fmt.Sprintf(ignoredPlanBaseWarningTemplateConstant, config.BaseReference))
		config.BaseReference = ""
	}
	if len(config.CommitReference) > 0 {
		warnings = append(warnings, fmt.Sprintf(ignoredPlanCommitWarningTemplateConstant, config.CommitReference))
		config.CommitReference = ""
	}
	return warnings
}

func discardReviewIrrelevant(config *InvocationConfig) []string {
	var warnings []string
	if len(config.PlanFilePath) > 0 {
		warnings = append(warnings, fmt.Sprintf(ignoredPlanFileWarningTemplateConstant, config.PlanFilePath))
		config.PlanFilePath = ""
	}
	if len(config.BaseReference) > 0 && config.Mode != ModeBranch {
		warnings = append(warnings, fmt.Sprintf(ignoredBaseWarningTemplateConstant, config.BaseReference))
		config.BaseReference = ""
	}
	if len(config.CommitReference) > 0 && config.Mode != ModeCommit {
		warnings = append(warnings, fmt.Sprintf(ignoredCommitWarningTemplateConstant, config.CommitReference))
		config.CommitReference = ""
	}
	return warnings
}

// loadPlanFile resolves the plan file against the current working directory and reads it.
func (resolver OptionsResolver) loadPlanFile(planFilePath string) (string, string, error) {
	absolutePath, resolveError := resolver.absolutePath(planFileRoleConstant, planFilePath)
	if resolveError != nil {
		return "", "", resolveError
	}

	fileInfo, statError := resolver.FileSystem.Stat(absolutePath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return "", "", fmt.Errorf(pathMissingTemplateConstant, planFileRoleConstant, planFilePath)
		}
		return "", "", fmt.Errorf(pathUnreadableTemplateConstant, planFileRoleConstant, planFilePath, statError)
	}
	if fileInfo.IsDir() {
		return "", "", fmt.Errorf(pathIsDirectoryTemplateConstant, planFileRoleConstant, planFilePath)
	}

	content, readError := resolver.FileSystem.ReadFile(absolutePath)
	if readError != nil {
		return "", "", fmt.Errorf(pathUnreadableTemplateConstant, planFileRoleConstant, planFilePath, readError)
	}
	return absolutePath, string(content), nil
}

func (resolver OptionsResolver) resolveTargetDirectory(targetDirectory string) (string, error) {
	trimmedDirectory := strings.TrimSpace(targetDirectory)
	if len(trimmedDirectory) == 0 {
		trimmedDirectory = defaultTargetDirectoryConstant
	}

	absolutePath, resolveError := resolver.absolutePath(targetDirectoryRoleConstant, trimmedDirectory)
	if resolveError != nil {
		return "", resolveError
	}

	fileInfo, statError := resolver.FileSystem.Stat(absolutePath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return "", fmt.Errorf(pathMissingTemplateConstant, targetDirectoryRoleConstant, trimmedDirectory)
		}
		return "", fmt.Errorf(pathUnreadableTemplateConstant, targetDirectoryRoleConstant, trimmedDirectory, statError)
	}
	if !fileInfo.IsDir() {
		return "", fmt.Errorf(pathNotDirectoryTemplateConstant, targetDirectoryRoleConstant, trimmedDirectory)
	}
	return absolutePath, nil
}

func (resolver OptionsResolver) absolutePath(role string, candidatePath string) (string, error) {
	expandedPath := resolver.HomeExpander.Expand(candidatePath)
	absolutePath, absError := resolver.FileSystem.Abs(expandedPath)
	if absError != nil {
		return "", fmt.Errorf(pathUnresolvableTemplateConstant, role, candidatePath, absError)
	}
	return absolutePath, nil
}

func (resolver OptionsResolver) executable() string {
	trimmedExecutable := strings.TrimSpace(resolver.Executable)
	if len(trimmedExecutable) == 0 {
		return defaultCodexExecutableConstant
	}
	return trimmedExecutable
}
