package review

import "strings"

const (
	defaultCodexExecutableConstant            = "codex"
	defaultSandboxConstant                    = "read-only"
	defaultBranchLogLimitConstant             = 10
	defaultCommitSummaryLineLimitConstant     = 15
	defaultPromptSizeWarningThresholdConstant = 30000
	configurationKeySeparatorConstant         = "."
	codexExecutableKeyConstant                = "codex_executable"
	modelKeyConstant                          = "model"
	sandboxKeyConstant                        = "sandbox"
	extraArgumentsKeyConstant                 = "extra_arguments"
	branchLogLimitKeyConstant                 = "branch_log_limit"
	commitSummaryLineLimitKeyConstant         = "commit_summary_line_limit"
	promptSizeWarningThresholdKeyConstant     = "prompt_size_warning_threshold"
)

// CommandConfiguration captures the review settings loaded from configuration files and the environment.
type CommandConfiguration struct {
	CodexExecutable            string   `mapstructure:"codex_executable" yaml:"codex_executable"`
	Model                      string   `mapstructure:"model" yaml:"model"`
	Sandbox                    string   `mapstructure:"sandbox" yaml:"sandbox"`
	ExtraArguments             []string `mapstructure:"extra_arguments" yaml:"extra_arguments"`
	BranchLogLimit             int      `mapstructure:"branch_log_limit" yaml:"branch_log_limit"`
	CommitSummaryLineLimit     int      `mapstructure:"commit_summary_line_limit" yaml:"commit_summary_line_limit"`
	PromptSizeWarningThreshold int      `mapstructure:"prompt_size_warning_threshold" yaml:"prompt_size_warning_threshold"`
}

// DefaultCommandConfiguration provides baseline review settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		CodexExecutable:            defaultCodexExecutableConstant,
		Model:                      "",
		Sandbox:                    defaultSandboxConstant,
		ExtraArguments:             []string{},
		BranchLogLimit:             defaultBranchLogLimitConstant,
		CommitSummaryLineLimit:     defaultCommitSummaryLineLimitConstant,
		PromptSizeWarningThreshold: defaultPromptSizeWarningThresholdConstant,
	}
}

// Sanitize trims values and restores defaults for empty or non-positive settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.CodexExecutable = strings.TrimSpace(configuration.CodexExecutable)
	if len(sanitized.CodexExecutable) == 0 {
		sanitized.CodexExecutable = defaults.CodexExecutable
	}
	sanitized.Model = strings.TrimSpace(configuration.Model)
	sanitized.Sandbox = strings.TrimSpace(configuration.Sandbox)
	if len(sanitized.Sandbox) == 0 {
		sanitized.Sandbox = defaults.Sandbox
	}
	sanitized.ExtraArguments = sanitizeArguments(configuration.ExtraArguments)
	if sanitized.BranchLogLimit <= 0 {
		sanitized.BranchLogLimit = defaults.BranchLogLimit
	}
	if sanitized.CommitSummaryLineLimit <= 0 {
		sanitized.CommitSummaryLineLimit = defaults.CommitSummaryLineLimit
	}
	if sanitized.PromptSizeWarningThreshold <= 0 {
		sanitized.PromptSizeWarningThreshold = defaults.PromptSizeWarningThreshold
	}

	return sanitized
}

func sanitizeArguments(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

// DefaultConfigurationValues returns the default review settings keyed by their configuration path under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	keyPrefix := ""
	if trimmedPrefix := strings.TrimSpace(prefix); len(trimmedPrefix) > 0 {
		keyPrefix = trimmedPrefix + configurationKeySeparatorConstant
	}

	return map[string]any{
		keyPrefix + codexExecutableKeyConstant:            defaults.CodexExecutable,
		keyPrefix + modelKeyConstant:                      defaults.Model,
		keyPrefix + sandboxKeyConstant:                    defaults.Sandbox,
		keyPrefix + extraArgumentsKeyConstant:             defaults.ExtraArguments,
		keyPrefix + branchLogLimitKeyConstant:             defaults.BranchLogLimit,
		keyPrefix + commitSummaryLineLimitKeyConstant:     defaults.CommitSummaryLineLimit,
		keyPrefix + promptSizeWarningThresholdKeyConstant: defaults.PromptSizeWarningThreshold,
	}
}
