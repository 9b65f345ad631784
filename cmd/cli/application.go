package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/multireview/internal/review"
	"github.com/temirov/multireview/internal/utils"
	flagutils "github.com/temirov/multireview/internal/utils/flags"
)

const (
	applicationNameConstant                 = "multireview"
	applicationLongDescriptionConstant      = "multireview discovers the git repositories in a workspace, summarizes their changes, and runs a codex review in each of them."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagDescriptionConstant         = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagDescriptionConstant        = "Override the configured log format."
	initFlagNameConstant                    = "init"
	initFlagUsageConstant                   = "Write the default configuration and exit. Use --init=user to write it under $HOME/.multireview."
	forceFlagNameConstant                   = "force"
	forceFlagUsageConstant                  = "Overwrite an existing configuration file when used with --init."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	reviewConfigurationKeyConstant          = "review"
	environmentPrefixConstant               = "MULTIREVIEW"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	runIdentifierFieldConstant              = "run_id"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "$HOME/" + userConfigurationDirectoryNameConstant
	defaultLogLevelConstant                 = utils.LogLevelWarn
	defaultLogFormatConstant                = utils.LogFormatConsole
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common" yaml:"common"`
	Review review.CommandConfiguration    `mapstructure:"review" yaml:"review"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultApplicationConfiguration returns the configuration used when no file or environment override exists.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Common: ApplicationCommonConfiguration{
			LogLevel:  string(defaultLogLevelConstant),
			LogFormat: string(defaultLogFormatConstant),
		},
		Review: review.DefaultCommandConfiguration(),
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	initFlagValue          string
	forceFlagValue         bool
	commandContextAccessor utils.CommandContextAccessor
	initializer            ConfigurationInitializer
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		configuration:          DefaultApplicationConfiguration(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		initializer:            NewConfigurationInitializer(),
	}

	reviewBuilder := review.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() review.CommandConfiguration {
			return application.configuration.Review
		},
	}
	cobraCommand, buildError := reviewBuilder.Build()
	if buildError != nil {
		cobraCommand = &cobra.Command{Use: applicationNameConstant}
	}

	reviewRun := cobraCommand.RunE
	cobraCommand.Long = applicationLongDescriptionConstant
	cobraCommand.SilenceUsage = true
	cobraCommand.SilenceErrors = true
	cobraCommand.PersistentPreRunE = func(command *cobra.Command, arguments []string) error {
		return application.initializeConfiguration(command)
	}
	cobraCommand.RunE = func(command *cobra.Command, arguments []string) error {
		if application.persistentFlagChanged(command, initFlagNameConstant) {
			return application.writeConfiguration(command)
		}
		if reviewRun == nil {
			return command.Help()
		}
		return reviewRun(command, arguments)
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(defaultLogLevelConstant), utils.SupportedLogLevels(), logLevelFlagDescriptionConstant))
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(defaultLogFormatConstant), utils.SupportedLogFormats(), logFormatFlagDescriptionConstant))
	persistentFlags.StringVar(&application.initFlagValue, initFlagNameConstant, "", initFlagUsageConstant)
	persistentFlags.Lookup(initFlagNameConstant).NoOptDefVal = string(InitializationScopeLocal)
	persistentFlags.BoolVar(&application.forceFlagValue, forceFlagNameConstant, false, forceFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the root command with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the root command with the provided arguments.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(flagutils.NormalizeFreeTextArguments(application.rootCommand, arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(defaultLogLevelConstant),
		commonLogFormatConfigKeyConstant: string(defaultLogFormatConstant),
	}
	for configurationKey, configurationValue := range review.DefaultConfigurationValues(reviewConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.configuration.Review = application.configuration.Review.Sanitize()

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	executionContext := context.Background()
	if command != nil && command.Context() != nil {
		executionContext = command.Context()
	}
	executionContext = application.commandContextAccessor.WithRunIdentifier(executionContext, "")
	executionContext = application.commandContextAccessor.WithConfigurationFilePath(executionContext, application.configurationMetadata.ConfigFileUsed)
	runIdentifier, _ := application.commandContextAccessor.RunIdentifier(executionContext)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		zap.String(runIdentifierFieldConstant, runIdentifier),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		command.SetContext(executionContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(executionContext)
		}
	}

	return nil
}

func (application *Application) writeConfiguration(command *cobra.Command) error {
	writtenPath, writeError := application.initializer.Write(InitializationScope(application.initFlagValue), application.forceFlagValue)
	if writeError != nil {
		return writeError
	}
	fmt.Fprintf(command.OutOrStdout(), configurationWrittenTemplateConstant, writtenPath)
	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
