package discovery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/multireview/internal/repos/shared"
)

const (
	hiddenEntryPrefixConstant                 = "."
	noRepositoriesTemplateConstant            = "no git repositories found in %s"
	listTargetErrorTemplateConstant           = "unable to list %s: %w"
	resolveTargetErrorTemplateConstant        = "unable to inspect %s: %w"
	resolverNotConfiguredMessageConstant      = "repository root resolver not configured"
	fileSystemNotConfiguredMessageConstant    = "repository filesystem not configured"
	childDirectorySkippedMessageConstant      = "Skipping directory that could not be inspected"
	repositoryDiscoveredMessageConstant       = "Discovered repository"
	duplicateRepositorySkippedMessageConstant = "Repository already discovered"
	logFieldDirectoryConstant                 = "directory"
	logFieldRepositoryRootConstant            = "repository_root"
)

var (
	// ErrRootResolverNotConfigured indicates the discoverer lacks a root resolver.
	ErrRootResolverNotConfigured = errors.New(resolverNotConfiguredMessageConstant)
	// ErrFileSystemNotConfigured indicates the discoverer lacks a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
)

// NoRepositoriesError reports a target directory with no discoverable repositories.
type NoRepositoriesError struct {
	TargetDirectory string
}

// Error describes the empty discovery result.
func (emptyError NoRepositoriesError) Error() string {
	return fmt.Sprintf(noRepositoriesTemplateConstant, emptyError.TargetDirectory)
}

// WorkspaceRepositoryDiscoverer finds repositories at a target directory and one level below it.
type WorkspaceRepositoryDiscoverer struct {
	rootResolver shared.RepositoryRootResolver
	fileSystem   shared.FileSystem
	logger       *zap.Logger
}

// NewWorkspaceRepositoryDiscoverer constructs a discoverer using git root resolution.
func NewWorkspaceRepositoryDiscoverer(rootResolver shared.RepositoryRootResolver, fileSystem shared.FileSystem, logger *zap.Logger) (*WorkspaceRepositoryDiscoverer, error) {
	if rootResolver == nil {
		return nil, ErrRootResolverNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceRepositoryDiscoverer{rootResolver: rootResolver, fileSystem: fileSystem, logger: logger}, nil
}

// DiscoverRepositories returns the de-duplicated repository roots for targetDirectory. The
// repository containing the target comes first, followed by the roots of its immediate
// child directories in listing order. Hidden entries and non-directories are ignored, and
// a child that cannot be inspected is skipped without failing the scan.
func (discoverer *WorkspaceRepositoryDiscoverer) DiscoverRepositories(executionContext context.Context, targetDirectory string) ([]shared.Repository, error) {
	cleanedTarget := filepath.Clean(targetDirectory)

	seenRoots := make(map[string]struct{})
	repositories := make([]shared.Repository, 0)
	appendRoot := func(directory string, rootPath string) {
		repository := shared.NewRepository(rootPath)
		if _, alreadySeen := seenRoots[repository.Path]; alreadySeen {
			discoverer.logger.Debug(duplicateRepositorySkippedMessageConstant, zap.String(logFieldDirectoryConstant, directory), zap.String(logFieldRepositoryRootConstant, repository.Path))
			return
		}
		seenRoots[repository.Path] = struct{}{}
		repositories = append(repositories, repository)
		discoverer.logger.Debug(repositoryDiscoveredMessageConstant, zap.String(logFieldDirectoryConstant, directory), zap.String(logFieldRepositoryRootConstant, repository.Path))
	}

	targetRoot, targetInsideRepository, resolveError := discoverer.rootResolver.ResolveRepositoryRoot(executionContext, cleanedTarget)
	if resolveError != nil {
		return nil, fmt.Errorf(resolveTargetErrorTemplateConstant, cleanedTarget, resolveError)
	}
	if targetInsideRepository {
		appendRoot(cleanedTarget, targetRoot)
	}

	directoryEntries, listError := discoverer.fileSystem.ReadDir(cleanedTarget)
	if listError != nil {
		return nil, fmt.Errorf(listTargetErrorTemplateConstant, cleanedTarget, listError)
	}

	for _, directoryEntry := range directoryEntries {
		if strings.HasPrefix(directoryEntry.Name(), hiddenEntryPrefixConstant) || !directoryEntry.IsDir() {
			continue
		}
		childDirectory := filepath.Join(cleanedTarget, directoryEntry.Name())
		childRoot, childInsideRepository, childError := discoverer.rootResolver.ResolveRepositoryRoot(executionContext, childDirectory)
		if childError != nil {
			discoverer.logger.Debug(childDirectorySkippedMessageConstant, zap.String(logFieldDirectoryConstant, childDirectory), zap.Error(childError))
			continue
		}
		if childInsideRepository {
			appendRoot(childDirectory, childRoot)
		}
	}

	if len(repositories) == 0 {
		return nil, NoRepositoriesError{TargetDirectory: cleanedTarget}
	}
	return repositories, nil
}
