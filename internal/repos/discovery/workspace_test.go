package discovery_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/multireview/internal/execshell"
	"github.com/temirov/multireview/internal/gitrepo"
	"github.com/temirov/multireview/internal/repos/discovery"
	"github.com/temirov/multireview/internal/repos/filesystem"
	"github.com/temirov/multireview/internal/repos/shared"
)

const (
	directoryPermissionsConstant = 0o755
	filePermissionsConstant      = 0o644
)

type rootResolution struct {
	root  string
	found bool
	err   error
}

type stubRootResolver struct {
	resolutions map[string]rootResolution
	queried     []string
}

func (resolver *stubRootResolver) ResolveRepositoryRoot(executionContext context.Context, directoryPath string) (string, bool, error) {
	resolver.queried = append(resolver.queried, directoryPath)
	resolution, exists := resolver.resolutions[directoryPath]
	if !exists {
		return "", false, nil
	}
	return resolution.root, resolution.found, resolution.err
}

func createDirectories(testInstance *testing.T, rootDirectory string, names ...string) {
	testInstance.Helper()
	for _, name := range names {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, name), directoryPermissionsConstant))
	}
}

func repositoryPaths(repositories []shared.Repository) []string {
	paths := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		paths = append(paths, repository.Path)
	}
	return paths
}

func TestNewWorkspaceRepositoryDiscovererValidation(testInstance *testing.T) {
	_, resolverError := discovery.NewWorkspaceRepositoryDiscoverer(nil, filesystem.OSFileSystem{}, zap.NewNop())
	require.ErrorIs(testInstance, resolverError, discovery.ErrRootResolverNotConfigured)

	_, fileSystemError := discovery.NewWorkspaceRepositoryDiscoverer(&stubRootResolver{}, nil, zap.NewNop())
	require.ErrorIs(testInstance, fileSystemError, discovery.ErrFileSystemNotConfigured)
}

func TestWorkspaceRepositoryDiscovererOrdering(testInstance *testing.T) {
	testCases := []struct {
		name          string
		children      []string
		resolutions   func(targetDirectory string) map[string]rootResolution
		expectedPaths func(targetDirectory string) []string
		expectedNames []string
	}{
		{
			name:     "target_is_repository_first",
			children: []string{"alpha", "beta"},
			resolutions: func(targetDirectory string) map[string]rootResolution {
				return map[string]rootResolution{
					targetDirectory:                         {root: targetDirectory, found: true},
					filepath.Join(targetDirectory, "alpha"): {root: targetDirectory, found: true},
					filepath.Join(targetDirectory, "beta"):  {root: filepath.Join(targetDirectory, "beta"), found: true},
				}
			},
			expectedPaths: func(targetDirectory string) []string {
				return []string{targetDirectory, filepath.Join(targetDirectory, "beta")}
			},
		},
		{
			name:     "children_in_listing_order",
			children: []string{"repoB", "repoA", "notes"},
			resolutions: func(targetDirectory string) map[string]rootResolution {
				return map[string]rootResolution{
					filepath.Join(targetDirectory, "repoA"): {root: filepath.Join(targetDirectory, "repoA"), found: true},
					filepath.Join(targetDirectory, "repoB"): {root: filepath.Join(targetDirectory, "repoB"), found: true},
				}
			},
			expectedPaths: func(targetDirectory string) []string {
				return []string{filepath.Join(targetDirectory, "repoA"), filepath.Join(targetDirectory, "repoB")}
			},
			expectedNames: []string{"repoA", "repoB"},
		},
		{
			name:     "target_inside_parent_repository",
			children: []string{"pkg"},
			resolutions: func(targetDirectory string) map[string]rootResolution {
				parentRoot := filepath.Dir(targetDirectory)
				return map[string]rootResolution{
					targetDirectory:                       {root: parentRoot, found: true},
					filepath.Join(targetDirectory, "pkg"): {root: parentRoot, found: true},
				}
			},
			expectedPaths: func(targetDirectory string) []string {
				return []string{filepath.Dir(targetDirectory)}
			},
		},
		{
			name:     "inspection_failure_skips_child",
			children: []string{"broken", "good"},
			resolutions: func(targetDirectory string) map[string]rootResolution {
				return map[string]rootResolution{
					filepath.Join(targetDirectory, "broken"): {err: errors.New("permission denied")},
					filepath.Join(targetDirectory, "good"):   {root: filepath.Join(targetDirectory, "good"), found: true},
				}
			},
			expectedPaths: func(targetDirectory string) []string {
				return []string{filepath.Join(targetDirectory, "good")}
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			targetDirectory := testInstance.TempDir()
			createDirectories(testInstance, targetDirectory, testCase.children...)

			resolver := &stubRootResolver{resolutions: testCase.resolutions(targetDirectory)}
			discoverer, creationError := discovery.NewWorkspaceRepositoryDiscoverer(resolver, filesystem.OSFileSystem{}, zap.NewNop())
			require.NoError(testInstance, creationError)

			repositories, discoveryError := discoverer.DiscoverRepositories(context.Background(), targetDirectory)
			require.NoError(testInstance, discoveryError)
			require.Equal(testInstance, testCase.expectedPaths(targetDirectory), repositoryPaths(repositories))
			if testCase.expectedNames != nil {
				for index, expectedName := range testCase.expectedNames {
					require.Equal(testInstance, expectedName, repositories[index].Name)
				}
			}
		})
	}
}

func TestWorkspaceRepositoryDiscovererIgnoresHiddenAndFiles(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	createDirectories(testInstance, targetDirectory, ".cache", "service")
	require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, "README.md"), []byte("notes"), filePermissionsConstant))
	require.NoError(testInstance, os.Symlink(filepath.Join(targetDirectory, "service"), filepath.Join(targetDirectory, "service-link")))

	resolver := &stubRootResolver{resolutions: map[string]rootResolution{
		filepath.Join(targetDirectory, "service"): {root: filepath.Join(targetDirectory, "service"), found: true},
	}}
	discoverer, creationError := discovery.NewWorkspaceRepositoryDiscoverer(resolver, filesystem.OSFileSystem{}, zap.NewNop())
	require.NoError(testInstance, creationError)

	repositories, discoveryError := discoverer.DiscoverRepositories(context.Background(), targetDirectory)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{filepath.Join(targetDirectory, "service")}, repositoryPaths(repositories))
	require.Equal(testInstance, []string{targetDirectory, filepath.Join(targetDirectory, "service")}, resolver.queried)
}

func TestWorkspaceRepositoryDiscovererReportsEmptyTarget(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	createDirectories(testInstance, targetDirectory, "plain")

	discoverer, creationError := discovery.NewWorkspaceRepositoryDiscoverer(&stubRootResolver{}, filesystem.OSFileSystem{}, zap.NewNop())
	require.NoError(testInstance, creationError)

	repositories, discoveryError := discoverer.DiscoverRepositories(context.Background(), targetDirectory)
	require.Nil(testInstance, repositories)
	var emptyError discovery.NoRepositoriesError
	require.ErrorAs(testInstance, discoveryError, &emptyError)
	require.Equal(testInstance, targetDirectory, emptyError.TargetDirectory)
	require.Contains(testInstance, discoveryError.Error(), targetDirectory)
}

func TestWorkspaceRepositoryDiscovererWithGit(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	temporaryDirectory, resolveError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, resolveError)

	testInstance.Setenv("GIT_CEILING_DIRECTORIES", temporaryDirectory)

	workspaceDirectory := filepath.Join(temporaryDirectory, "workspace")
	createDirectories(testInstance, workspaceDirectory, "repoA", "repoB", "nested/deeper", "plain")
	for _, repositoryDirectory := range []string{"repoA", "repoB", "nested/deeper"} {
		initCommand := exec.Command("git", "init", "--quiet", filepath.Join(workspaceDirectory, repositoryDirectory))
		require.NoError(testInstance, initCommand.Run())
	}

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	require.NoError(testInstance, managerError)

	discoverer, creationError := discovery.NewWorkspaceRepositoryDiscoverer(repositoryManager, filesystem.OSFileSystem{}, zap.NewNop())
	require.NoError(testInstance, creationError)

	repositories, discoveryError := discoverer.DiscoverRepositories(context.Background(), workspaceDirectory)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{filepath.Join(workspaceDirectory, "repoA"), filepath.Join(workspaceDirectory, "repoB")}, repositoryPaths(repositories))
}
