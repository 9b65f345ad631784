package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/multireview/internal/repos/shared"
)

const (
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	noCommitsAheadTemplateConstant          = "no commits ahead of %s"
	commitsAheadUnavailableTemplateConstant = "unable to list commits ahead of %s"
	describeFailureTemplateConstant         = "unable to describe changes in %s: %w"
)

// ErrRepositoryManagerNotConfigured indicates the describer lacks a repository manager.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ChangeSummary is the display text for one repository's change set and the skip decision.
type ChangeSummary struct {
	Lines      []string
	Skip       bool
	SkipReason SkipReason
}

// ChangeDescriber inspects a repository for the change set selected by the mode.
type ChangeDescriber struct {
	manager                shared.GitRepositoryManager
	branchLogLimit         int
	commitSummaryLineLimit int
}

// NewChangeDescriber constructs a describer with the configured output limits.
func NewChangeDescriber(manager shared.GitRepositoryManager, configuration CommandConfiguration) (*ChangeDescriber, error) {
	if manager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	sanitized := configuration.Sanitize()
	return &ChangeDescriber{
		manager:                manager,
		branchLogLimit:         sanitized.BranchLogLimit,
		commitSummaryLineLimit: sanitized.CommitSummaryLineLimit,
	}, nil
}

// Describe summarizes the repository for the configured mode. Clean working trees and
// unresolvable commits are skipped; an empty branch log is reported but still reviewed.
func (describer *ChangeDescriber) Describe(executionContext context.Context, repository shared.Repository, config InvocationConfig) (ChangeSummary, error) {
	switch config.Mode {
	case ModeBranch:
		commits, logError := describer.manager.CommitsAhead(executionContext, repository.Path, config.BaseReference, describer.branchLogLimit)
		if logError != nil {
			return ChangeSummary{Lines: []string{fmt.Sprintf(commitsAheadUnavailableTemplateConstant, config.BaseReference)}}, nil
		}
		if len(commits) == 0 {
			return ChangeSummary{Lines: []string{fmt.Sprintf(noCommitsAheadTemplateConstant, config.BaseReference)}}, nil
		}
		return ChangeSummary{Lines: commits}, nil
	case ModeCommit:
		exists, existsError := describer.manager.CommitExists(executionContext, repository.Path, config.CommitReference)
		if existsError != nil {
			return ChangeSummary{}, fmt.Errorf(describeFailureTemplateConstant, repository.Name, existsError)
		}
		if !exists {
			return ChangeSummary{Skip: true, SkipReason: SkipReasonCommitNotFound}, nil
		}
		summaryLines, summaryError := describer.manager.CommitSummary(executionContext, repository.Path, config.CommitReference, describer.commitSummaryLineLimit)
		if summaryError != nil {
			return ChangeSummary{}, fmt.Errorf(describeFailureTemplateConstant, repository.Name, summaryError)
		}
		return ChangeSummary{Lines: summaryLines}, nil
	default:
		statusLines, statusError := describer.manager.ShortStatus(executionContext, repository.Path)
		if statusError != nil {
			return ChangeSummary{}, fmt.Errorf(describeFailureTemplateConstant, repository.Name, statusError)
		}
		if len(statusLines) == 0 {
			return ChangeSummary{Skip: true, SkipReason: SkipReasonNoChanges}, nil
		}
		return ChangeSummary{Lines: statusLines}, nil
	}
}
