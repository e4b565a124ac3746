package orglist

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v61/github"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                    = "org-list"
	commandShortDescriptionConstant       = "List every repository of a GitHub organization"
	commandLongDescriptionConstant        = "org-list enumerates all repositories of a GitHub organization and writes one clone reference per line, ready for repo-sync."
	commandExecutionErrorTemplateConstant = "organization listing failed: %w"
	flagOrganizationNameConstant          = "org"
	flagOrganizationDescriptionConstant   = "GitHub organization whose repositories should be listed"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "File receiving the repository references (stdout when omitted)"
	flagTokenNameConstant                 = "token"
	flagTokenDescriptionConstant          = "GitHub API token (falls back to GITHUB_TOKEN)"
	tokenEnvironmentNameConstant          = "GITHUB_TOKEN"
	outputFilePermissionsConstant         = 0o644
	outputWriteFailureTemplateConstant    = "unable to write repository references to %s: %w"
	missingOrganizationMessageConstant    = "organization name is required; supply --org"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RepositoryListerFactory builds a repository lister for the given API token.
type RepositoryListerFactory func(authToken string) RepositoryLister

// CommandBuilder assembles the org-list command.
type CommandBuilder struct {
	LoggerProvider          LoggerProvider
	ConfigurationProvider   func() CommandConfiguration
	RepositoryListerFactory RepositoryListerFactory
}

// Build constructs the org-list command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagOrganizationNameConstant, "", flagOrganizationDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)
	command.Flags().String(flagTokenNameConstant, "", flagTokenDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	organizationName := configuration.Organization
	if flagValue, _ := command.Flags().GetString(flagOrganizationNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		organizationName = strings.TrimSpace(flagValue)
	}
	if len(organizationName) == 0 {
		return errors.New(missingOrganizationMessageConstant)
	}

	outputPath := configuration.OutputPath
	if command.Flags().Changed(flagOutputNameConstant) {
		flagValue, _ := command.Flags().GetString(flagOutputNameConstant)
		outputPath = strings.TrimSpace(flagValue)
	}

	authToken := builder.resolveAuthToken(command, configuration)

	service, serviceCreationError := NewService(Dependencies{
		Logger:           builder.resolveLogger(),
		RepositoryLister: builder.resolveLister(authToken),
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	repositories, listError := service.ListOrganizationRepositories(command.Context(), organizationName)
	if listError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, listError)
	}

	if len(outputPath) == 0 {
		return WriteReferences(command.OutOrStdout(), repositories)
	}

	referenceBuilder := &strings.Builder{}
	if renderError := WriteReferences(referenceBuilder, repositories); renderError != nil {
		return renderError
	}
	if writeError := os.WriteFile(outputPath, []byte(referenceBuilder.String()), outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(outputWriteFailureTemplateConstant, outputPath, writeError)
	}

	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveAuthToken(command *cobra.Command, configuration CommandConfiguration) string {
	if flagValue, _ := command.Flags().GetString(flagTokenNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		return strings.TrimSpace(flagValue)
	}
	if len(configuration.AuthToken) > 0 {
		return configuration.AuthToken
	}
	return strings.TrimSpace(os.Getenv(tokenEnvironmentNameConstant))
}

func (builder *CommandBuilder) resolveLister(authToken string) RepositoryLister {
	if builder.RepositoryListerFactory != nil {
		return builder.RepositoryListerFactory(authToken)
	}

	if len(authToken) > 0 {
		return github.NewClient(nil).WithAuthToken(authToken).Repositories
	}
	return github.NewClient(nil).Repositories
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
