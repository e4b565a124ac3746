package orglist

import "strings"

// CommandConfiguration captures configuration values for the organization listing command.
type CommandConfiguration struct {
	Organization string `mapstructure:"organization"`
	OutputPath   string `mapstructure:"output"`
	AuthToken    string `mapstructure:"token"`
}

// DefaultCommandConfiguration provides baseline configuration values for organization listing.
// An empty output path directs references to standard output.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Organization: "",
		OutputPath:   "",
		AuthToken:    "",
	}
}

// DefaultConfigurationValues exposes configuration defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey + ".organization": defaults.Organization,
		configurationKey + ".output":       defaults.OutputPath,
		configurationKey + ".token":        defaults.AuthToken,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.Organization = strings.TrimSpace(configuration.Organization)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	sanitized.AuthToken = strings.TrimSpace(configuration.AuthToken)

	return sanitized
}
