package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/reporover/reporover/internal/gitrepo"
)

const (
	commentLinePrefixConstant                  = "#"
	destinationDirectoryPermissionsConstant    = 0o755
	synchronizerNotConfiguredMessageConstant   = "repository synchronizer not configured"
	batchFailuresMessageConstant               = "one or more repositories failed to synchronize"
	inputFileReadFailureTemplateConstant       = "unable to read input file %s: %w"
	destinationCleanFailureTemplateConstant    = "unable to remove destination root %s: %w"
	destinationCreationFailureTemplateConstant = "unable to create destination root %s: %w"
	logMessageBatchStartedConstant             = "Batch synchronization started"
	logMessageDestinationCleanedConstant       = "Destination root removed before synchronization"
	logMessageReferenceSkippedConstant         = "Skipping unparseable repository reference"
	logMessageBatchCompletedConstant           = "Batch synchronization completed"
	logFieldInputFileConstant                  = "input_file"
	logFieldDestinationRootConstant            = "destination_root"
	logFieldReferenceCountConstant             = "reference_count"
	logFieldSucceededCountConstant             = "succeeded"
	logFieldFailedCountConstant                = "failed"
	logFieldSkippedCountConstant               = "skipped"
)

// Sentinel errors raised by the batch driver.
var (
	ErrSynchronizerNotConfigured = errors.New(synchronizerNotConfiguredMessageConstant)
	ErrBatchContainedFailures    = errors.New(batchFailuresMessageConstant)
)

// RepositorySynchronizer drives one repository reference through synchronization.
type RepositorySynchronizer interface {
	Sync(executionContext context.Context, repositoryReference string, options SyncOptions) (ProcessingResult, error)
}

// BatchOptions configures one batch synchronization run.
type BatchOptions struct {
	InputFilePath        string
	DestinationRoot      string
	Clean                bool
	PruneDeletedBranches bool
	FailOnBranchErrors   bool
}

// BatchDependencies enumerates the collaborators required by the batch driver.
type BatchDependencies struct {
	Logger       *zap.Logger
	Synchronizer RepositorySynchronizer
	FileSystem   FileSystem
}

// BatchDriver synchronizes every repository named in an input file.
type BatchDriver struct {
	logger       *zap.Logger
	synchronizer RepositorySynchronizer
	fileSystem   FileSystem
}

// NewBatchDriver validates dependencies and constructs a BatchDriver.
func NewBatchDriver(dependencies BatchDependencies) (*BatchDriver, error) {
	if dependencies.Synchronizer == nil {
		return nil, ErrSynchronizerNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchDriver{
		logger:       logger,
		synchronizer: dependencies.Synchronizer,
		fileSystem:   dependencies.FileSystem,
	}, nil
}

// Run synchronizes every reference in the input file and aggregates outcomes.
// It returns ErrBatchContainedFailures alongside the summary when any
// repository failed, so callers can exit non-zero without losing the report.
func (driver *BatchDriver) Run(executionContext context.Context, options BatchOptions) (BatchSummary, error) {
	inputContent, readError := driver.fileSystem.ReadFile(options.InputFilePath)
	if readError != nil {
		return BatchSummary{}, fmt.Errorf(inputFileReadFailureTemplateConstant, options.InputFilePath, readError)
	}

	repositoryReferences := collectReferences(string(inputContent))
	driver.logger.Info(logMessageBatchStartedConstant,
		zap.String(logFieldInputFileConstant, options.InputFilePath),
		zap.String(logFieldDestinationRootConstant, options.DestinationRoot),
		zap.Int(logFieldReferenceCountConstant, len(repositoryReferences)),
	)

	if options.Clean {
		if cleanError := driver.fileSystem.RemoveAll(options.DestinationRoot); cleanError != nil {
			return BatchSummary{}, fmt.Errorf(destinationCleanFailureTemplateConstant, options.DestinationRoot, cleanError)
		}
		driver.logger.Info(logMessageDestinationCleanedConstant,
			zap.String(logFieldDestinationRootConstant, options.DestinationRoot),
		)
	}
	if creationError := driver.fileSystem.MkdirAll(options.DestinationRoot, destinationDirectoryPermissionsConstant); creationError != nil {
		return BatchSummary{}, fmt.Errorf(destinationCreationFailureTemplateConstant, options.DestinationRoot, creationError)
	}

	syncOptions := SyncOptions{
		DestinationRoot:      options.DestinationRoot,
		PruneDeletedBranches: options.PruneDeletedBranches,
		FailOnBranchErrors:   options.FailOnBranchErrors,
	}

	summary := BatchSummary{}
	for _, repositoryReference := range repositoryReferences {
		result, syncError := driver.synchronizer.Sync(executionContext, repositoryReference, syncOptions)
		if syncError != nil {
			var parseError gitrepo.RemoteURLParseError
			if errors.As(syncError, &parseError) {
				summary.Skipped++
				driver.logger.Warn(logMessageReferenceSkippedConstant,
					zap.String(logFieldReferenceConstant, repositoryReference),
					zap.String(logFieldFailureReasonConstant, syncError.Error()),
				)
				continue
			}

			summary.Failed++
			summary.Results = append(summary.Results, ProcessingResult{
				Reference:      repositoryReference,
				Succeeded:      false,
				FailureMessage: syncError.Error(),
			})
			continue
		}

		summary.Results = append(summary.Results, result)
		if result.Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	driver.logger.Info(logMessageBatchCompletedConstant,
		zap.Int(logFieldSucceededCountConstant, summary.Succeeded),
		zap.Int(logFieldFailedCountConstant, summary.Failed),
		zap.Int(logFieldSkippedCountConstant, summary.Skipped),
	)

	if summary.Failed > 0 {
		return summary, ErrBatchContainedFailures
	}
	return summary, nil
}

func collectReferences(inputContent string) []string {
	references := make([]string, 0)
	for _, inputLine := range strings.Split(inputContent, "\n") {
		trimmedLine := strings.TrimSpace(inputLine)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commentLinePrefixConstant) {
			continue
		}
		references = append(references, trimmedLine)
	}
	return references
}
