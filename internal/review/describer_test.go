package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multireview/internal/repos/shared"
)

func TestChangeDescriberModes(testInstance *testing.T) {
	repository := shared.NewRepository("/workspace/service")

	testCases := []struct {
		name           string
		manager        *stubRepositoryManager
		config         InvocationConfig
		expected       ChangeSummary
		expectedLimits []int
	}{
		{
			name:     "uncommitted_clean",
			manager:  &stubRepositoryManager{},
			config:   InvocationConfig{Mode: ModeUncommitted},
			expected: ChangeSummary{Skip: true, SkipReason: SkipReasonNoChanges},
		},
		{
			name:     "uncommitted_dirty",
			manager:  &stubRepositoryManager{statuses: map[string][]string{repository.Path: {" M main.go", "?? notes.md"}}},
			config:   InvocationConfig{Mode: ModeUncommitted},
			expected: ChangeSummary{Lines: []string{" M main.go", "?? notes.md"}},
		},
		{
			name:     "staged_clean",
			manager:  &stubRepositoryManager{},
			config:   InvocationConfig{Mode: ModeStaged},
			expected: ChangeSummary{Skip: true, SkipReason: SkipReasonNoChanges},
		},
		{
			name:           "branch_without_commits",
			manager:        &stubRepositoryManager{},
			config:         InvocationConfig{Mode: ModeBranch, BaseReference: "main"},
			expected:       ChangeSummary{Lines: []string{"no commits ahead of main"}},
			expectedLimits: []int{10},
		},
		{
			name:           "branch_with_commits",
			manager:        &stubRepositoryManager{commitsAhead: map[string][]string{repository.Path: {"abc1234 Add cache"}}},
			config:         InvocationConfig{Mode: ModeBranch, BaseReference: "main"},
			expected:       ChangeSummary{Lines: []string{"abc1234 Add cache"}},
			expectedLimits: []int{10},
		},
		{
			name:           "branch_log_failure",
			manager:        &stubRepositoryManager{aheadErrors: map[string]error{repository.Path: errors.New("unknown revision")}},
			config:         InvocationConfig{Mode: ModeBranch, BaseReference: "develop"},
			expected:       ChangeSummary{Lines: []string{"unable to list commits ahead of develop"}},
			expectedLimits: []int{10},
		},
		{
			name:     "commit_not_found",
			manager:  &stubRepositoryManager{},
			config:   InvocationConfig{Mode: ModeCommit, CommitReference: "deadbeef"},
			expected: ChangeSummary{Skip: true, SkipReason: SkipReasonCommitNotFound},
		},
		{
			name: "commit_found",
			manager: &stubRepositoryManager{
				existingCommits: map[string]bool{repository.Path: true},
				summaries:       map[string][]string{repository.Path: {"deadbeef Fix race", " cache.go | 4 ++--"}},
			},
			config:         InvocationConfig{Mode: ModeCommit, CommitReference: "deadbeef"},
			expected:       ChangeSummary{Lines: []string{"deadbeef Fix race", " cache.go | 4 ++--"}},
			expectedLimits: []int{15},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			describer, describerError := NewChangeDescriber(testCase.manager, DefaultCommandConfiguration())
			require.NoError(testInstance, describerError)

			summary, describeError := describer.Describe(context.Background(), repository, testCase.config)
			require.NoError(testInstance, describeError)
			require.Equal(testInstance, testCase.expected, summary)
			require.Equal(testInstance, testCase.expectedLimits, testCase.manager.recordedLimits)
		})
	}
}

func TestChangeDescriberUsesConfiguredLimits(testInstance *testing.T) {
	manager := &stubRepositoryManager{existingCommits: map[string]bool{"/workspace/service": true}}
	configuration := DefaultCommandConfiguration()
	configuration.BranchLogLimit = 3
	configuration.CommitSummaryLineLimit = 7

	describer, describerError := NewChangeDescriber(manager, configuration)
	require.NoError(testInstance, describerError)

	repository := shared.NewRepository("/workspace/service")
	_, branchError := describer.Describe(context.Background(), repository, InvocationConfig{Mode: ModeBranch, BaseReference: "main"})
	require.NoError(testInstance, branchError)
	_, commitError := describer.Describe(context.Background(), repository, InvocationConfig{Mode: ModeCommit, CommitReference: "HEAD"})
	require.NoError(testInstance, commitError)

	require.Equal(testInstance, []int{3, 7}, manager.recordedLimits)
}

func TestChangeDescriberReportsStatusFailures(testInstance *testing.T) {
	manager := &stubRepositoryManager{statusErrors: map[string]error{"/workspace/service": errors.New("index locked")}}
	describer, describerError := NewChangeDescriber(manager, DefaultCommandConfiguration())
	require.NoError(testInstance, describerError)

	_, describeError := describer.Describe(context.Background(), shared.NewRepository("/workspace/service"), InvocationConfig{Mode: ModeStaged})
	require.ErrorContains(testInstance, describeError, "unable to describe changes in service")
	require.ErrorContains(testInstance, describeError, "index locked")
}

func TestNewChangeDescriberRequiresManager(testInstance *testing.T) {
	_, describerError := NewChangeDescriber(nil, DefaultCommandConfiguration())
	require.ErrorIs(testInstance, describerError, ErrRepositoryManagerNotConfigured)
}
