package mirror

import "strings"

const defaultOutputDirectoryConstant = "./repos"

// CommandConfiguration captures configuration values for the repository synchronization command.
type CommandConfiguration struct {
	InputFilePath        string `mapstructure:"input"`
	OutputDirectory      string `mapstructure:"output"`
	Clean                bool   `mapstructure:"clean"`
	PruneDeletedBranches bool   `mapstructure:"prune"`
	FailOnBranchErrors   bool   `mapstructure:"fail_on_branch_errors"`
}

// DefaultCommandConfiguration provides baseline configuration values for repository synchronization.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		InputFilePath:        "",
		OutputDirectory:      defaultOutputDirectoryConstant,
		Clean:                false,
		PruneDeletedBranches: false,
		FailOnBranchErrors:   false,
	}
}

// DefaultConfigurationValues exposes configuration defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey + ".input":                 defaults.InputFilePath,
		configurationKey + ".output":                defaults.OutputDirectory,
		configurationKey + ".clean":                 defaults.Clean,
		configurationKey + ".prune":                 defaults.PruneDeletedBranches,
		configurationKey + ".fail_on_branch_errors": defaults.FailOnBranchErrors,
	}
}

// Sanitize trims configuration values and restores defaults for blank entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.InputFilePath = strings.TrimSpace(configuration.InputFilePath)
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)
	if len(sanitized.OutputDirectory) == 0 {
		sanitized.OutputDirectory = defaultOutputDirectoryConstant
	}

	return sanitized
}
