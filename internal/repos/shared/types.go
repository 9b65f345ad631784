package shared

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/temirov/multireview/internal/execshell"
)

// FileSystem exposes the filesystem operations required by discovery and option resolution.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
}

// GitExecutor exposes the subset of shell execution used for git queries.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CodexExecutor exposes the subset of shell execution used to run the review tool.
type CodexExecutor interface {
	ExecuteCodex(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager answers the repository questions asked while describing changes.
type GitRepositoryManager interface {
	ResolveRepositoryRoot(executionContext context.Context, directoryPath string) (string, bool, error)
	ShortStatus(executionContext context.Context, repositoryPath string) ([]string, error)
	CommitsAhead(executionContext context.Context, repositoryPath string, baseReference string, limit int) ([]string, error)
	CommitExists(executionContext context.Context, repositoryPath string, commitReference string) (bool, error)
	CommitSummary(executionContext context.Context, repositoryPath string, commitReference string, lineLimit int) ([]string, error)
}

// RepositoryRootResolver resolves the working tree root containing a directory.
type RepositoryRootResolver interface {
	ResolveRepositoryRoot(executionContext context.Context, directoryPath string) (string, bool, error)
}

// RepositoryDiscoverer produces the ordered repository set for a target directory.
type RepositoryDiscoverer interface {
	DiscoverRepositories(executionContext context.Context, targetDirectory string) ([]Repository, error)
}

// Repository identifies one git working tree root.
type Repository struct {
	Path string
	Name string
}

// NewRepository derives the display name from the last component of the root path.
func NewRepository(rootPath string) Repository {
	cleanedPath := filepath.Clean(rootPath)
	return Repository{Path: cleanedPath, Name: filepath.Base(cleanedPath)}
}
