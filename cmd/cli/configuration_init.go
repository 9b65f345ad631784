package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	userConfigurationDirectoryNameConstant      = ".multireview"
	configurationFileNameConstant               = configurationNameConstant + "." + configurationTypeConstant
	configurationDirectoryPermissionsConstant   = 0o755
	configurationFilePermissionsConstant        = 0o644
	configurationWrittenTemplateConstant        = "Configuration written to %s\n"
	unsupportedScopeTemplateConstant            = "unsupported --init scope %q (accepted: %s)"
	configurationExistsTemplateConstant         = "configuration file %s already exists; use --force to overwrite"
	workingDirectoryErrorTemplateConstant       = "unable to determine working directory: %w"
	homeDirectoryErrorTemplateConstant          = "unable to determine home directory: %w"
	configurationRenderErrorTemplateConstant    = "unable to render configuration: %w"
	configurationDirectoryErrorTemplateConstant = "unable to create configuration directory %s: %w"
	configurationWriteErrorTemplateConstant     = "unable to write configuration file %s: %w"
	configurationStatErrorTemplateConstant      = "unable to inspect configuration file %s: %w"
	scopeSeparatorConstant                      = ", "
)

// InitializationScope selects where --init writes the configuration file.
type InitializationScope string

const (
	// InitializationScopeLocal writes config.yaml into the working directory.
	InitializationScopeLocal InitializationScope = "local"
	// InitializationScopeUser writes config.yaml under $HOME/.multireview.
	InitializationScopeUser InitializationScope = "user"
)

// ErrConfigurationExists indicates the target configuration file is present and --force was not given.
var ErrConfigurationExists = errors.New("configuration file already exists")

type configurationExistsError struct {
	path string
}

func (existsError configurationExistsError) Error() string {
	return fmt.Sprintf(configurationExistsTemplateConstant, existsError.path)
}

func (existsError configurationExistsError) Is(target error) bool {
	return target == ErrConfigurationExists
}

// ConfigurationInitializer renders the default configuration into a scope-specific file.
type ConfigurationInitializer struct {
	workingDirectoryProvider func() (string, error)
	homeDirectoryProvider    func() (string, error)
}

// NewConfigurationInitializer builds an initializer backed by the process working and home directories.
func NewConfigurationInitializer() ConfigurationInitializer {
	return ConfigurationInitializer{
		workingDirectoryProvider: os.Getwd,
		homeDirectoryProvider:    os.UserHomeDir,
	}
}

// Write renders the default configuration for scope and returns the written path.
func (initializer ConfigurationInitializer) Write(scope InitializationScope, force bool) (string, error) {
	targetPath, pathError := initializer.resolvePath(scope)
	if pathError != nil {
		return "", pathError
	}

	_, statError := os.Stat(targetPath)
	switch {
	case statError == nil:
		if !force {
			return "", configurationExistsError{path: targetPath}
		}
	case !errors.Is(statError, os.ErrNotExist):
		return "", fmt.Errorf(configurationStatErrorTemplateConstant, targetPath, statError)
	}

	content, renderError := RenderDefaultConfiguration()
	if renderError != nil {
		return "", renderError
	}

	targetDirectory := filepath.Dir(targetPath)
	if mkdirError := os.MkdirAll(targetDirectory, configurationDirectoryPermissionsConstant); mkdirError != nil {
		return "", fmt.Errorf(configurationDirectoryErrorTemplateConstant, targetDirectory, mkdirError)
	}
	if writeError := os.WriteFile(targetPath, content, configurationFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(configurationWriteErrorTemplateConstant, targetPath, writeError)
	}

	return targetPath, nil
}

func (initializer ConfigurationInitializer) resolvePath(scope InitializationScope) (string, error) {
	normalizedScope := InitializationScope(strings.ToLower(strings.TrimSpace(string(scope))))
	switch normalizedScope {
	case InitializationScopeLocal, "":
		workingDirectory, workingDirectoryError := initializer.workingDirectoryProvider()
		if workingDirectoryError != nil {
			return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		return filepath.Join(workingDirectory, configurationFileNameConstant), nil
	case InitializationScopeUser:
		homeDirectory, homeDirectoryError := initializer.homeDirectoryProvider()
		if homeDirectoryError != nil {
			return "", fmt.Errorf(homeDirectoryErrorTemplateConstant, homeDirectoryError)
		}
		return filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant, configurationFileNameConstant), nil
	default:
		acceptedScopes := strings.Join([]string{string(InitializationScopeLocal), string(InitializationScopeUser)}, scopeSeparatorConstant)
		return "", fmt.Errorf(unsupportedScopeTemplateConstant, string(scope), acceptedScopes)
	}
}

// RenderDefaultConfiguration returns the default application configuration encoded as YAML.
func RenderDefaultConfiguration() ([]byte, error) {
	content, marshalError := yaml.Marshal(DefaultApplicationConfiguration())
	if marshalError != nil {
		return nil, fmt.Errorf(configurationRenderErrorTemplateConstant, marshalError)
	}
	return content, nil
}
