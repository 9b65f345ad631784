package review

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/multireview/internal/execshell"
	"github.com/temirov/multireview/internal/repos/dependencies"
	"github.com/temirov/multireview/internal/repos/shared"
	"github.com/temirov/multireview/internal/ui"
	flagutils "github.com/temirov/multireview/internal/utils/flags"
	pathutils "github.com/temirov/multireview/internal/utils/path"
)

const (
	commandUseNameConstant          = "multireview"
	commandUsageTemplateConstant    = commandUseNameConstant + " [flags] [instructions...]"
	commandShortDescriptionConstant = "Run codex reviews across every repository in a workspace"
	commandLongDescriptionConstant  = "multireview finds the git repository containing the target directory and the repositories in its immediate subdirectories, prints a summary of each change set, and runs codex in every repository in turn. Trailing words are sent to codex as review instructions. Use --action plan to review an implementation plan against each codebase instead."
	commandExampleTemplateConstant  = "multireview -d ~/Development\nmultireview -m branch -b main focus on error handling\nmultireview -a plan -f docs/plan.md"
	actionFlagNameConstant          = "action"
	actionFlagShorthandConstant     = "a"
	actionFlagDescriptionConstant   = "what to send to codex"
	modeFlagNameConstant            = "mode"
	modeFlagShorthandConstant       = "m"
	modeFlagDescriptionConstant     = "which changes to review"
	baseFlagNameConstant            = "base"
	baseFlagShorthandConstant       = "b"
	baseFlagUsageConstant           = "base reference for --mode branch"
	commitFlagNameConstant          = "commit"
	commitFlagShorthandConstant     = "c"
	commitFlagUsageConstant         = "commit reference for --mode commit"
	fileFlagNameConstant            = "file"
	fileFlagShorthandConstant       = "f"
	fileFlagUsageConstant           = "plan file for --action plan, relative to the current directory"
	directoryFlagNameConstant       = "dir"
	directoryFlagShorthandConstant  = "d"
	directoryFlagUsageConstant      = "target directory to scan for repositories"
	modelFlagNameConstant           = "model"
	modelFlagUsageConstant          = "codex model override"
	verboseFlagNameConstant         = "verbose"
	verboseFlagShorthandConstant    = "v"
	verboseFlagUsageConstant        = "print every git and codex command and the generated prompts"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the review command. Collaborators left nil are built from the
// configuration on first use.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            shared.FileSystem
	HomeExpander          *pathutils.HomeExpander
	GitRepositoryManager  shared.GitRepositoryManager
	RepositoryDiscoverer  shared.RepositoryDiscoverer
	CodexClient           CodexClient
	AvailabilityCheck     AvailabilityCheck
}

// Build constructs the review command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUsageTemplateConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		RunE:    builder.run,
		Args:    cobra.ArbitraryArgs,
		Example: commandExampleTemplateConstant,
	}

	command.Flags().StringP(actionFlagNameConstant, actionFlagShorthandConstant, string(DefaultAction), flagutils.FormatChoiceUsage(string(DefaultAction), SupportedActions(), actionFlagDescriptionConstant))
	command.Flags().StringP(modeFlagNameConstant, modeFlagShorthandConstant, string(DefaultMode), flagutils.FormatChoiceUsage(string(DefaultMode), SupportedModes(), modeFlagDescriptionConstant))
	command.Flags().StringP(baseFlagNameConstant, baseFlagShorthandConstant, "", baseFlagUsageConstant)
	command.Flags().StringP(commitFlagNameConstant, commitFlagShorthandConstant, "", commitFlagUsageConstant)
	command.Flags().StringP(fileFlagNameConstant, fileFlagShorthandConstant, "", fileFlagUsageConstant)
	command.Flags().StringP(directoryFlagNameConstant, directoryFlagShorthandConstant, defaultTargetDirectoryConstant, directoryFlagUsageConstant)
	command.Flags().String(modelFlagNameConstant, "", modelFlagUsageConstant)
	command.Flags().BoolP(verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	rawOptions := builder.readOptions(command, arguments)
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)

	collaborators, collaboratorsError := builder.resolveCollaborators(command, configuration, logger, fileSystem, rawOptions.Verbose)
	if collaboratorsError != nil {
		return collaboratorsError
	}

	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	resolver := OptionsResolver{
		FileSystem:        fileSystem,
		HomeExpander:      homeExpander,
		CheckAvailability: collaborators.availabilityCheck,
		Executable:        configuration.CodexExecutable,
	}
	resolution, resolutionError := resolver.Resolve(rawOptions)
	if resolutionError != nil {
		return resolutionError
	}

	reporter := NewConsoleReporter(command.OutOrStdout(), command.ErrOrStderr())
	for _, warning := range resolution.Warnings {
		reporter.Warning(warning)
	}

	describer, describerError := NewChangeDescriber(collaborators.repositoryManager, configuration)
	if describerError != nil {
		return describerError
	}
	invoker, invokerError := NewReviewInvoker(collaborators.codexClient, configuration, command.OutOrStdout(), command.ErrOrStderr())
	if invokerError != nil {
		return invokerError
	}

	service, serviceError := NewService(ServiceDependencies{
		RepositoryDiscoverer:       collaborators.repositoryDiscoverer,
		Describer:                  describer,
		Invoker:                    invoker,
		Reporter:                   reporter,
		Logger:                     logger,
		PromptSizeWarningThreshold: configuration.PromptSizeWarningThreshold,
	})
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), resolution.Config)
	return runError
}

type resolvedCollaborators struct {
	repositoryManager    shared.GitRepositoryManager
	repositoryDiscoverer shared.RepositoryDiscoverer
	codexClient          CodexClient
	availabilityCheck    AvailabilityCheck
}

func (builder *CommandBuilder) resolveCollaborators(command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger, fileSystem shared.FileSystem, verbose bool) (resolvedCollaborators, error) {
	collaborators := resolvedCollaborators{
		repositoryManager:    builder.GitRepositoryManager,
		repositoryDiscoverer: builder.RepositoryDiscoverer,
		codexClient:          builder.CodexClient,
		availabilityCheck:    builder.AvailabilityCheck,
	}

	var shellExecutor *execshell.ShellExecutor
	if collaborators.repositoryManager == nil || collaborators.repositoryDiscoverer == nil || collaborators.codexClient == nil {
		executorOptions := []execshell.ShellExecutorOption{execshell.WithCodexExecutable(configuration.CodexExecutable)}
		if verbose {
			executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventReporter(command.ErrOrStderr())))
		}
		resolvedExecutor, executorError := dependencies.ResolveShellExecutor(nil, logger, executorOptions...)
		if executorError != nil {
			return resolvedCollaborators{}, executorError
		}
		shellExecutor = resolvedExecutor
	}

	if collaborators.repositoryManager == nil {
		repositoryManager, managerError := dependencies.ResolveGitRepositoryManager(nil, shellExecutor)
		if managerError != nil {
			return resolvedCollaborators{}, managerError
		}
		collaborators.repositoryManager = repositoryManager
	}

	if collaborators.repositoryDiscoverer == nil {
		repositoryDiscoverer, discovererError := dependencies.ResolveRepositoryDiscoverer(nil, collaborators.repositoryManager, fileSystem, logger)
		if discovererError != nil {
			return resolvedCollaborators{}, discovererError
		}
		collaborators.repositoryDiscoverer = repositoryDiscoverer
	}

	if collaborators.codexClient == nil {
		codexClient, clientError := dependencies.ResolveCodexClient(nil, shellExecutor, configuration.CodexExecutable)
		if clientError != nil {
			return resolvedCollaborators{}, clientError
		}
		collaborators.codexClient = codexClient
		if collaborators.availabilityCheck == nil {
			collaborators.availabilityCheck = codexClient.CheckAvailability
		}
	}

	return collaborators, nil
}

func (builder *CommandBuilder) readOptions(command *cobra.Command, arguments []string) RawOptions {
	flagSet := command.Flags()
	action, _ := flagSet.GetString(actionFlagNameConstant)
	mode, _ := flagSet.GetString(modeFlagNameConstant)
	baseReference, _ := flagSet.GetString(baseFlagNameConstant)
	commitReference, _ := flagSet.GetString(commitFlagNameConstant)
	planFilePath, _ := flagSet.GetString(fileFlagNameConstant)
	targetDirectory, _ := flagSet.GetString(directoryFlagNameConstant)
	model, _ := flagSet.GetString(modelFlagNameConstant)
	verbose, _ := flagSet.GetBool(verboseFlagNameConstant)

	return RawOptions{
		Action:          action,
		Mode:            mode,
		BaseReference:   baseReference,
		CommitReference: commitReference,
		PlanFilePath:    planFilePath,
		TargetDirectory: targetDirectory,
		Model:           strings.TrimSpace(model),
		Verbose:         verbose,
		Instructions:    flagutils.JoinFreeText(arguments),
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
