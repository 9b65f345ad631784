package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/multireview/internal/codexcli"
	"github.com/temirov/multireview/internal/repos/shared"
)

const (
	testDirectoryPermissionsConstant = 0o755
	testFilePermissionsConstant      = 0o644
)

type stubRepositoryManager struct {
	statuses        map[string][]string
	statusErrors    map[string]error
	commitsAhead    map[string][]string
	aheadErrors     map[string]error
	existingCommits map[string]bool
	summaries       map[string][]string
	recordedLimits  []int
	statusQueries   []string
}

func (manager *stubRepositoryManager) ResolveRepositoryRoot(_ context.Context, directoryPath string) (string, bool, error) {
	return directoryPath, true, nil
}

func (manager *stubRepositoryManager) ShortStatus(_ context.Context, repositoryPath string) ([]string, error) {
	manager.statusQueries = append(manager.statusQueries, repositoryPath)
	if statusError := manager.statusErrors[repositoryPath]; statusError != nil {
		return nil, statusError
	}
	return manager.statuses[repositoryPath], nil
}

func (manager *stubRepositoryManager) CommitsAhead(_ context.Context, repositoryPath string, _ string, limit int) ([]string, error) {
	manager.recordedLimits = append(manager.recordedLimits, limit)
	if aheadError := manager.aheadErrors[repositoryPath]; aheadError != nil {
		return nil, aheadError
	}
	return manager.commitsAhead[repositoryPath], nil
}

func (manager *stubRepositoryManager) CommitExists(_ context.Context, repositoryPath string, _ string) (bool, error) {
	return manager.existingCommits[repositoryPath], nil
}

func (manager *stubRepositoryManager) CommitSummary(_ context.Context, repositoryPath string, _ string, lineLimit int) ([]string, error) {
	manager.recordedLimits = append(manager.recordedLimits, lineLimit)
	return manager.summaries[repositoryPath], nil
}

type stubDiscoverer struct {
	repositories []shared.Repository
	err          error
	queried      []string
}

func (discoverer *stubDiscoverer) DiscoverRepositories(_ context.Context, targetDirectory string) ([]shared.Repository, error) {
	discoverer.queried = append(discoverer.queried, targetDirectory)
	if discoverer.err != nil {
		return nil, discoverer.err
	}
	return discoverer.repositories, nil
}

type stubCodexClient struct {
	exitCodes map[string]int
	failures  map[string]error
	reviews   []codexcli.ReviewRequest
	execs     []codexcli.ExecRequest
}

func (client *stubCodexClient) Review(_ context.Context, request codexcli.ReviewRequest) (codexcli.Outcome, error) {
	client.reviews = append(client.reviews, request)
	return client.outcome(request.RepositoryPath)
}

func (client *stubCodexClient) Exec(_ context.Context, request codexcli.ExecRequest) (codexcli.Outcome, error) {
	client.execs = append(client.execs, request)
	return client.outcome(request.RepositoryPath)
}

func (client *stubCodexClient) outcome(repositoryPath string) (codexcli.Outcome, error) {
	if failure := client.failures[repositoryPath]; failure != nil {
		return codexcli.Outcome{}, failure
	}
	return codexcli.Outcome{ExitCode: client.exitCodes[repositoryPath]}, nil
}

func (client *stubCodexClient) invokedPaths() []string {
	paths := make([]string, 0, len(client.reviews)+len(client.execs))
	for _, request := range client.reviews {
		paths = append(paths, request.RepositoryPath)
	}
	for _, request := range client.execs {
		paths = append(paths, request.RepositoryPath)
	}
	return paths
}

func writeTestFile(testInstance *testing.T, path string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(path), testDirectoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(path, []byte(content), testFilePermissionsConstant))
}
