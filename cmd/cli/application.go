package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/reporover/reporover/internal/mirror"
	"github.com/reporover/reporover/internal/orglist"
	"github.com/reporover/reporover/internal/utils"
)

const (
	applicationNameConstant                 = "reporover"
	applicationShortDescriptionConstant     = "Mirror every repository of a GitHub organization"
	applicationLongDescriptionConstant      = "reporover lists the repositories of a GitHub organization and keeps complete local mirrors of them, preserving every branch and tag."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	logDirectoryFlagNameConstant            = "log-dir"
	logDirectoryFlagUsageConstant           = "Directory receiving timestamped log files (empty disables file logging)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonLogDirectoryConfigKeyConstant     = commonConfigurationKeyConstant + ".log_file_directory"
	environmentPrefixConstant               = "REPOROVER"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationLogFileFieldConstant       = "log_file"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	defaultLogFileDirectoryConstant         = "logs"
	commandsConfigurationKeyConstant        = "commands"
	orgListConfigurationKeyConstant         = commandsConfigurationKeyConstant + ".org_list"
	repoSyncConfigurationKeyConstant        = commandsConfigurationKeyConstant + ".repo_sync"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration   `mapstructure:"common"`
	Commands ApplicationCommandsConfiguration `mapstructure:"commands"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel         string `mapstructure:"log_level"`
	LogFormat        string `mapstructure:"log_format"`
	LogFileDirectory string `mapstructure:"log_file_directory"`
}

// ApplicationCommandsConfiguration holds configuration for the CLI subcommands.
type ApplicationCommandsConfiguration struct {
	OrgList  orglist.CommandConfiguration `mapstructure:"org_list"`
	RepoSync mirror.CommandConfiguration  `mapstructure:"repo_sync"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	logDirectoryFlagValue string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(utils.ConfigurationLoaderSettings{
		ConfigurationName: configurationNameConstant,
		ConfigurationType: configurationTypeConstant,
		EnvironmentPrefix: environmentPrefixConstant,
		SearchPaths:       []string{defaultConfigurationSearchPathConstant},
	})
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logDirectoryFlagValue, logDirectoryFlagNameConstant, "", logDirectoryFlagUsageConstant)

	organizationListingBuilder := orglist.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() orglist.CommandConfiguration {
			return application.configuration.Commands.OrgList
		},
	}
	organizationListingCommand, organizationListingBuildError := organizationListingBuilder.Build()
	if organizationListingBuildError == nil {
		cobraCommand.AddCommand(organizationListingCommand)
	}

	repositorySyncBuilder := mirror.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() mirror.CommandConfiguration {
			return application.configuration.Commands.RepoSync
		},
	}
	repositorySyncCommand, repositorySyncBuildError := repositorySyncBuilder.Build()
	if repositorySyncBuildError == nil {
		cobraCommand.AddCommand(repositorySyncCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// RootCommand exposes the assembled cobra command tree.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:     string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:    string(utils.LogFormatStructured),
		commonLogDirectoryConfigKeyConstant: defaultLogFileDirectoryConstant,
	}
	for configurationKey, configurationValue := range orglist.DefaultConfigurationValues(orgListConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range mirror.DefaultConfigurationValues(repoSyncConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, logDirectoryFlagNameConstant) {
		application.configuration.Common.LogFileDirectory = application.logDirectoryFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		strings.TrimSpace(application.configuration.Common.LogFileDirectory),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.Logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationLogFileFieldConstant, loggerOutputs.LogFilePath),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}
	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
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
