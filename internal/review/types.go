package review

import (
	"fmt"
	"strings"

	"github.com/temirov/multireview/internal/repos/shared"
)

// Action selects what is sent to the review tool.
type Action string

// Mode selects the change set reviewed in each repository.
type Mode string

const (
	// ActionReview reviews existing changes.
	ActionReview Action = "review"
	// ActionPlan reviews an implementation plan against each codebase.
	ActionPlan Action = "plan"

	// ModeUncommitted reviews the working tree against HEAD.
	ModeUncommitted Mode = "uncommitted"
	// ModeStaged reviews the index.
	ModeStaged Mode = "staged"
	// ModeBranch reviews the commits on HEAD that are not on a base reference.
	ModeBranch Mode = "branch"
	// ModeCommit reviews a single commit.
	ModeCommit Mode = "commit"

	// DefaultAction is used when no action is requested.
	DefaultAction = ActionReview
	// DefaultMode is used when no mode is requested.
	DefaultMode = ModeUncommitted

	actionReviewLabelConstant = "Review"
	actionPlanLabelConstant   = "Plan review"
)

// SupportedActions lists the accepted action values in display order.
func SupportedActions() []string {
	return []string{string(ActionReview), string(ActionPlan)}
}

// SupportedModes lists the accepted mode values in display order.
func SupportedModes() []string {
	return []string{string(ModeUncommitted), string(ModeStaged), string(ModeBranch), string(ModeCommit)}
}

// ParseAction normalizes an action value; an empty value selects DefaultAction.
func ParseAction(value string) (Action, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if len(normalized) == 0 {
		return DefaultAction, nil
	}
	for _, supported := range SupportedActions() {
		if normalized == supported {
			return Action(normalized), nil
		}
	}
	return "", UnsupportedValueError{Option: actionOptionNameConstant, Value: value, Accepted: SupportedActions()}
}

// ParseMode normalizes a mode value; an empty value selects DefaultMode.
func ParseMode(value string) (Mode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if len(normalized) == 0 {
		return DefaultMode, nil
	}
	for _, supported := range SupportedModes() {
		if normalized == supported {
			return Mode(normalized), nil
		}
	}
	return "", UnsupportedValueError{Option: modeOptionNameConstant, Value: value, Accepted: SupportedModes()}
}

// Label names the action in the final summary line.
func (action Action) Label() string {
	if action == ActionPlan {
		return actionPlanLabelConstant
	}
	return actionReviewLabelConstant
}

// InvocationConfig is the validated, immutable description of one run.
type InvocationConfig struct {
	Action          Action
	Mode            Mode
	BaseReference   string
	CommitReference string
	PlanFilePath    string
	PlanContent     string
	TargetDirectory string
	Model           string
	Verbose         bool
	Instructions    string
}

// SkipReason explains why a repository was not sent for review.
type SkipReason string

const (
	// SkipReasonNoChanges marks a clean working tree or index.
	SkipReasonNoChanges SkipReason = "no changes"
	// SkipReasonCommitNotFound marks a commit reference that does not resolve in the repository.
	SkipReasonCommitNotFound SkipReason = "commit not found in this repo"
)

// Outcome is the per-repository result folded into the Tally.
type Outcome struct {
	Repository shared.Repository
	Attempted  bool
	Skipped    bool
	SkipReason SkipReason
	ExitCode   int
	Failure    error
}

// Failed reports whether the repository counts against the exit status.
func (outcome Outcome) Failed() bool {
	return outcome.Failure != nil || (outcome.Attempted && outcome.ExitCode != 0)
}

// Tally accumulates outcomes across the repository loop.
type Tally struct {
	Reviewed int
	Skipped  int
	Failed   int
}

// Fold returns the tally updated with one outcome.
func (tally Tally) Fold(outcome Outcome) Tally {
	updated := tally
	if outcome.Attempted {
		updated.Reviewed++
	}
	if outcome.Skipped {
		updated.Skipped++
	}
	if outcome.Failed() {
		updated.Failed++
	}
	return updated
}

// Succeeded reports whether every attempted repository finished with exit status zero.
func (tally Tally) Succeeded() bool {
	return tally.Failed == 0
}

// UnsupportedValueError reports an option value outside its accepted set.
type UnsupportedValueError struct {
	Option   string
	Value    string
	Accepted []string
}

// Error describes the rejected value.
func (valueError UnsupportedValueError) Error() string {
	return fmt.Sprintf(unsupportedValueTemplateConstant, valueError.Option, valueError.Value, strings.Join(valueError.Accepted, acceptedValuesSeparatorConstant))
}

// MissingDependencyError reports that the external review tool is not installed.
type MissingDependencyError struct {
	Executable string
	Cause      error
}

// Error describes the missing executable.
func (dependencyError MissingDependencyError) Error() string {
	return fmt.Sprintf(missingDependencyTemplateConstant, dependencyError.Executable)
}

// Unwrap exposes the lookup failure.
func (dependencyError MissingDependencyError) Unwrap() error {
	return dependencyError.Cause
}
