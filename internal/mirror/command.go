package mirror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reporover/reporover/internal/execshell"
	"github.com/reporover/reporover/internal/gitrepo"
)

const (
	commandUseConstant                    = "repo-sync"
	commandShortDescriptionConstant       = "Clone or update local mirrors for every repository in a file"
	commandLongDescriptionConstant        = "repo-sync reads repository references from an input file and clones or destructively updates a local mirror for each one, preserving every remote branch."
	commandExecutionErrorTemplateConstant = "repository synchronization failed: %w"
	flagInputNameConstant                 = "input"
	flagInputDescriptionConstant          = "File containing one repository reference per line"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Directory receiving the mirror directories"
	flagCleanNameConstant                 = "clean"
	flagCleanDescriptionConstant          = "Remove the output directory before synchronizing"
	flagPruneNameConstant                 = "prune"
	flagPruneDescriptionConstant          = "Delete local branches whose remote counterpart disappeared"
	flagFailOnBranchErrorsNameConstant    = "fail-on-branch-errors"
	flagFailOnBranchErrorsDescription     = "Treat a repository as failed when any of its branches fails"
	missingInputMessageConstant           = "input file is required; supply --input"
)

var errMissingInputFile = errors.New(missingInputMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the repo-sync command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	GitExecutor                  gitrepo.GitExecutor
	FileSystem                   FileSystem
}

// Build constructs the repo-sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagInputNameConstant, "", flagInputDescriptionConstant)
	command.Flags().String(flagOutputNameConstant, "", flagOutputDescriptionConstant)
	command.Flags().Bool(flagCleanNameConstant, false, flagCleanDescriptionConstant)
	command.Flags().Bool(flagPruneNameConstant, false, flagPruneDescriptionConstant)
	command.Flags().Bool(flagFailOnBranchErrorsNameConstant, false, flagFailOnBranchErrorsDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	batchOptions, optionsError := builder.resolveBatchOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	fileSystem := builder.resolveFileSystem()

	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}
	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor)
	if managerError != nil {
		return managerError
	}

	synchronizer, synchronizerError := NewSynchronizer(Dependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		FileSystem:        fileSystem,
	})
	if synchronizerError != nil {
		return synchronizerError
	}

	batchDriver, driverError := NewBatchDriver(BatchDependencies{
		Logger:       logger,
		Synchronizer: synchronizer,
		FileSystem:   fileSystem,
	})
	if driverError != nil {
		return driverError
	}

	_, runError := batchDriver.Run(command.Context(), batchOptions)
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) resolveBatchOptions(command *cobra.Command) (BatchOptions, error) {
	configuration := builder.resolveConfiguration()

	inputFilePath := configuration.InputFilePath
	if flagValue, _ := command.Flags().GetString(flagInputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		inputFilePath = strings.TrimSpace(flagValue)
	}
	if len(inputFilePath) == 0 {
		return BatchOptions{}, errMissingInputFile
	}

	destinationRoot := configuration.OutputDirectory
	if flagValue, _ := command.Flags().GetString(flagOutputNameConstant); len(strings.TrimSpace(flagValue)) > 0 {
		destinationRoot = strings.TrimSpace(flagValue)
	}

	cleanRequested := configuration.Clean
	if command.Flags().Changed(flagCleanNameConstant) {
		cleanRequested, _ = command.Flags().GetBool(flagCleanNameConstant)
	}
	pruneRequested := configuration.PruneDeletedBranches
	if command.Flags().Changed(flagPruneNameConstant) {
		pruneRequested, _ = command.Flags().GetBool(flagPruneNameConstant)
	}
	failOnBranchErrors := configuration.FailOnBranchErrors
	if command.Flags().Changed(flagFailOnBranchErrorsNameConstant) {
		failOnBranchErrors, _ = command.Flags().GetBool(flagFailOnBranchErrorsNameConstant)
	}

	return BatchOptions{
		InputFilePath:        inputFilePath,
		DestinationRoot:      destinationRoot,
		Clean:                cleanRequested,
		PruneDeletedBranches: pruneRequested,
		FailOnBranchErrors:   failOnBranchErrors,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return NewOSFileSystem()
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
