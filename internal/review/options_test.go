package review

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multireview/internal/repos/filesystem"
	pathutils "github.com/temirov/multireview/internal/utils/path"
)

func newTestResolver() OptionsResolver {
	return OptionsResolver{FileSystem: filesystem.OSFileSystem{}, Executable: "codex"}
}

func TestResolveAppliesDefaults(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()

	resolution, resolveError := newTestResolver().Resolve(RawOptions{TargetDirectory: targetDirectory})
	require.NoError(testInstance, resolveError)
	require.Empty(testInstance, resolution.Warnings)
	require.Equal(testInstance, InvocationConfig{
		Action:          ActionReview,
		Mode:            ModeUncommitted,
		TargetDirectory: targetDirectory,
	}, resolution.Config)
}

func TestResolveValidation(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	notADirectory := filepath.Join(targetDirectory, "notes.txt")
	writeTestFile(testInstance, notADirectory, "notes")

	testCases := []struct {
		name            string
		options         RawOptions
		expectedError   error
		expectedMessage string
	}{
		{
			name:          "plan_without_input",
			options:       RawOptions{Action: "plan", TargetDirectory: targetDirectory},
			expectedError: ErrPlanInputRequired,
		},
		{
			name:            "plan_file_missing",
			options:         RawOptions{Action: "plan", PlanFilePath: filepath.Join(targetDirectory, "missing.md"), TargetDirectory: targetDirectory},
			expectedMessage: "does not exist",
		},
		{
			name:            "plan_file_directory",
			options:         RawOptions{Action: "plan", PlanFilePath: targetDirectory, TargetDirectory: targetDirectory},
			expectedMessage: "is a directory",
		},
		{
			name:          "branch_without_base",
			options:       RawOptions{Mode: "branch", TargetDirectory: targetDirectory},
			expectedError: ErrBaseReferenceRequired,
		},
		{
			name:          "commit_without_reference",
			options:       RawOptions{Mode: "commit", TargetDirectory: targetDirectory},
			expectedError: ErrCommitReferenceRequired,
		},
		{
			name:            "unknown_action",
			options:         RawOptions{Action: "audit", TargetDirectory: targetDirectory},
			expectedMessage: "unsupported action",
		},
		{
			name:            "target_missing",
			options:         RawOptions{TargetDirectory: filepath.Join(targetDirectory, "absent")},
			expectedMessage: "target directory",
		},
		{
			name:            "target_not_directory",
			options:         RawOptions{TargetDirectory: notADirectory},
			expectedMessage: "is not a directory",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, resolveError := newTestResolver().Resolve(testCase.options)
			require.Error(testInstance, resolveError)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
			}
			if len(testCase.expectedMessage) > 0 {
				require.ErrorContains(testInstance, resolveError, testCase.expectedMessage)
			}
		})
	}
}

func TestResolveChecksReviewToolFirst(testInstance *testing.T) {
	resolver := newTestResolver()
	resolver.CheckAvailability = func() error { return errors.New("executable file not found in $PATH") }

	_, resolveError := resolver.Resolve(RawOptions{Action: "audit", TargetDirectory: "/definitely/missing"})

	var dependencyError MissingDependencyError
	require.ErrorAs(testInstance, resolveError, &dependencyError)
	require.Equal(testInstance, "codex", dependencyError.Executable)
	require.EqualError(testInstance, resolveError, "codex is required but was not found in PATH")
}

func TestResolveDiscardsIrrelevantOptionsWithWarnings(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	planFilePath := filepath.Join(targetDirectory, "plan.md")
	writeTestFile(testInstance, planFilePath, "# Plan\nAdd caching.")

	testCases := []struct {
		name             string
		options          RawOptions
		expectedWarnings []string
		verify           func(testInstance *testing.T, config InvocationConfig)
	}{
		{
			name:             "review_with_plan_file",
			options:          RawOptions{PlanFilePath: planFilePath, TargetDirectory: targetDirectory},
			expectedWarnings: []string{"--file is only used with --action plan; ignoring " + planFilePath},
			verify: func(testInstance *testing.T, config InvocationConfig) {
				require.Empty(testInstance, config.PlanFilePath)
				require.Empty(testInstance, config.PlanContent)
			},
		},
		{
			name:             "plan_with_branch_mode",
			options:          RawOptions{Action: "plan", Mode: "branch", BaseReference: "main", Instructions: "check it", TargetDirectory: targetDirectory},
			expectedWarnings: []string{"--mode branch has no effect with --action plan", "--base main has no effect with --action plan"},
			verify: func(testInstance *testing.T, config InvocationConfig) {
				require.Equal(testInstance, ModeUncommitted, config.Mode)
				require.Empty(testInstance, config.BaseReference)
			},
		},
		{
			name:             "plan_with_commit_reference",
			options:          RawOptions{Action: "plan", CommitReference: "deadbeef", Instructions: "check it", TargetDirectory: targetDirectory},
			expectedWarnings: []string{"--commit deadbeef has no effect with --action plan"},
			verify: func(testInstance *testing.T, config InvocationConfig) {
				require.Empty(testInstance, config.CommitReference)
			},
		},
		{
			name:             "base_outside_branch_mode",
			options:          RawOptions{Mode: "staged", BaseReference: "main", TargetDirectory: targetDirectory},
			expectedWarnings: []string{"--base main is only used with --mode branch; ignoring it"},
			verify: func(testInstance *testing.T, config InvocationConfig) {
				require.Equal(testInstance, ModeStaged, config.Mode)
				require.Empty(testInstance, config.BaseReference)
			},
		},
		{
			name:             "commit_outside_commit_mode",
			options:          RawOptions{Mode: "branch", BaseReference: "main", CommitReference: "deadbeef", TargetDirectory: targetDirectory},
			expectedWarnings: []string{"--commit deadbeef is only used with --mode commit; ignoring it"},
			verify: func(testInstance *testing.T, config InvocationConfig) {
				require.Equal(testInstance, "main", config.BaseReference)
				require.Empty(testInstance, config.CommitReference)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolution, resolveError := newTestResolver().Resolve(testCase.options)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedWarnings, resolution.Warnings)
			testCase.verify(testInstance, resolution.Config)
		})
	}
}

func TestResolveLoadsPlanFileRelativeToWorkingDirectory(testInstance *testing.T) {
	workingDirectory, symlinkError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, symlinkError)
	targetDirectory := testInstance.TempDir()
	writeTestFile(testInstance, filepath.Join(workingDirectory, "docs", "plan.md"), "Split the parser.\n")
	changeWorkingDirectory(testInstance, workingDirectory)

	resolution, resolveError := newTestResolver().Resolve(RawOptions{Action: "plan", PlanFilePath: "docs/plan.md", TargetDirectory: targetDirectory})
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, filepath.Join(workingDirectory, "docs", "plan.md"), resolution.Config.PlanFilePath)
	require.Equal(testInstance, "Split the parser.\n", resolution.Config.PlanContent)
	require.Equal(testInstance, targetDirectory, resolution.Config.TargetDirectory)
}

func TestResolveExpandsHomeDirectory(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	writeTestFile(testInstance, filepath.Join(homeDirectory, "plans", "next.md"), "Plan body")

	resolver := newTestResolver()
	resolver.HomeExpander = pathutils.NewHomeExpanderWithProvider(func() (string, error) { return homeDirectory, nil })

	resolution, resolveError := resolver.Resolve(RawOptions{Action: "plan", PlanFilePath: "~/plans/next.md", TargetDirectory: "~"})
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, homeDirectory, resolution.Config.TargetDirectory)
	require.Equal(testInstance, "Plan body", resolution.Config.PlanContent)
}

func TestResolveRequiresFileSystem(testInstance *testing.T) {
	_, resolveError := OptionsResolver{}.Resolve(RawOptions{})
	require.ErrorIs(testInstance, resolveError, ErrFileSystemNotConfigured)
}

// changeWorkingDirectory mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func changeWorkingDirectory(testInstance *testing.T, directory string) {
	testInstance.Helper()
	previousDirectory, getwdError := os.Getwd()
	require.NoError(testInstance, getwdError)
	require.NoError(testInstance, os.Chdir(directory))
	absoluteDirectory := directory
	if !filepath.IsAbs(absoluteDirectory) {
		absoluteDirectory = filepath.Join(previousDirectory, directory)
	}
	testInstance.Setenv("PWD", absoluteDirectory)
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(previousDirectory))
	})
}
