package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/multireview/internal/codexcli"
	"github.com/temirov/multireview/internal/execshell"
	"github.com/temirov/multireview/internal/gitrepo"
	"github.com/temirov/multireview/internal/repos/discovery"
	"github.com/temirov/multireview/internal/repos/filesystem"
	"github.com/temirov/multireview/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveShellExecutor returns the provided executor or constructs an os/exec backed default.
func ResolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger, options ...execshell.ShellExecutorOption) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), options...)
}

// ResolveGitRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

// ResolveRepositoryDiscoverer returns the provided discoverer or a git-backed workspace discoverer.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer, rootResolver shared.RepositoryRootResolver, fileSystem shared.FileSystem, logger *zap.Logger) (shared.RepositoryDiscoverer, error) {
	if existing != nil {
		return existing, nil
	}
	return discovery.NewWorkspaceRepositoryDiscoverer(rootResolver, fileSystem, logger)
}

// ResolveCodexClient returns the provided client or constructs one around the executor.
func ResolveCodexClient(existing *codexcli.Client, executor shared.CodexExecutor, executable string) (*codexcli.Client, error) {
	if existing != nil {
		return existing, nil
	}
	return codexcli.NewClient(executor, codexcli.WithExecutable(executable))
}
