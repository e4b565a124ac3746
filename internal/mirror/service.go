package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/reporover/reporover/internal/gitrepo"
)

const (
	managerNotConfiguredMessageConstant      = "repository manager not configured"
	fileSystemNotConfiguredMessageConstant   = "file system not configured"
	destinationInspectionFailureConstant     = "unable to inspect destination directory"
	branchFailureSummaryTemplateConstant     = "%d branches failed to synchronize"
	failureMessageTemplateConstant           = "%s: %v"
	logMessageSyncStartedConstant            = "Repository synchronization started"
	logMessageCloneCompletedConstant         = "Repository cloned"
	logMessageBranchSynchronizedConstant     = "Branch synchronized"
	logMessageBranchFailedConstant           = "Branch synchronization failed"
	logMessageBranchPrunedConstant           = "Local branch pruned"
	logMessageRepositorySynchronizedConstant = "Repository synchronized"
	logMessageRepositoryFailedConstant       = "Repository synchronization failed"
	logFieldReferenceConstant                = "reference"
	logFieldDirectoryConstant                = "directory"
	logFieldBranchNameConstant               = "branch"
	logFieldBranchStatusConstant             = "status"
	logFieldFailureReasonConstant            = "reason"
	logFieldNewBranchCountConstant           = "new_branches"
	logFieldUpdatedBranchCountConstant       = "updated_branches"
	logFieldFailedBranchCountConstant        = "failed_branches"
)

// Sentinel errors raised when the synchronizer is constructed incompletely.
var (
	ErrRepositoryManagerNotConfigured = errors.New(managerNotConfiguredMessageConstant)
	ErrFileSystemNotConfigured        = errors.New(fileSystemNotConfiguredMessageConstant)
)

// RepositoryManager enumerates the git operations the synchronizer relies on.
type RepositoryManager interface {
	CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error
	FetchAllRemotes(executionContext context.Context, repositoryPath string) error
	CleanWorktree(executionContext context.Context, repositoryPath string) error
	ListRemoteBranches(executionContext context.Context, repositoryPath string) ([]string, error)
	ListLocalBranches(executionContext context.Context, repositoryPath string) ([]string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string) error
	ForceSetBranch(executionContext context.Context, repositoryPath string, branchName string) error
	ResetCurrentBranch(executionContext context.Context, repositoryPath string, branchName string) error
	DeleteLocalBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	GetDefaultBranch(executionContext context.Context, repositoryPath string) (string, error)
}

// SyncOptions carries the per-run synchronization policies.
type SyncOptions struct {
	DestinationRoot      string
	PruneDeletedBranches bool
	FailOnBranchErrors   bool
}

// Dependencies enumerates the collaborators required by the synchronizer.
type Dependencies struct {
	Logger            *zap.Logger
	RepositoryManager RepositoryManager
	FileSystem        FileSystem
}

// Synchronizer reconciles one local mirror directory with its remote repository.
type Synchronizer struct {
	logger            *zap.Logger
	repositoryManager RepositoryManager
	fileSystem        FileSystem
}

// NewSynchronizer validates dependencies and constructs a Synchronizer.
func NewSynchronizer(dependencies Dependencies) (*Synchronizer, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synchronizer{
		logger:            logger,
		repositoryManager: dependencies.RepositoryManager,
		fileSystem:        dependencies.FileSystem,
	}, nil
}

// Sync drives one repository reference through the synchronization lifecycle.
// Parse failures surface as errors so the caller can skip the reference;
// repository-level operation failures are reported through the result.
func (synchronizer *Synchronizer) Sync(executionContext context.Context, repositoryReference string, options SyncOptions) (ProcessingResult, error) {
	parsedReference, parseError := gitrepo.ParseRemoteURL(repositoryReference)
	if parseError != nil {
		return ProcessingResult{}, parseError
	}

	directoryName := parsedReference.DirectoryName()
	repositoryPath := filepath.Join(options.DestinationRoot, directoryName)
	result := ProcessingResult{Reference: repositoryReference, DirectoryName: directoryName}

	synchronizer.logger.Info(logMessageSyncStartedConstant,
		zap.String(logFieldReferenceConstant, repositoryReference),
		zap.String(logFieldDirectoryConstant, directoryName),
	)

	directoryPresent, inspectionError := synchronizer.fileSystem.DirectoryExists(repositoryPath)
	if inspectionError != nil {
		return synchronizer.finishWithFailure(result, fmt.Sprintf(failureMessageTemplateConstant, destinationInspectionFailureConstant, inspectionError)), nil
	}

	if directoryPresent {
		return synchronizer.updateExistingRepository(executionContext, result, repositoryPath, options), nil
	}
	return synchronizer.cloneNewRepository(executionContext, result, repositoryReference, repositoryPath, options), nil
}

func (synchronizer *Synchronizer) cloneNewRepository(executionContext context.Context, result ProcessingResult, repositoryReference string, repositoryPath string, options SyncOptions) ProcessingResult {
	cloneError := synchronizer.repositoryManager.CloneRepository(executionContext, repositoryReference, repositoryPath)
	if cloneError != nil {
		return synchronizer.finishWithFailure(result, cloneError.Error())
	}
	synchronizer.logger.Info(logMessageCloneCompletedConstant,
		zap.String(logFieldReferenceConstant, result.Reference),
		zap.String(logFieldDirectoryConstant, result.DirectoryName),
	)

	remoteBranches, remoteListError := synchronizer.repositoryManager.ListRemoteBranches(executionContext, repositoryPath)
	if remoteListError != nil {
		return synchronizer.finishWithFailure(result, remoteListError.Error())
	}
	localBranches, localListError := synchronizer.repositoryManager.ListLocalBranches(executionContext, repositoryPath)
	if localListError != nil {
		return synchronizer.finishWithFailure(result, localListError.Error())
	}
	localBranchSet := buildBranchSet(localBranches)

	for _, remoteBranch := range remoteBranches {
		if localBranchSet[remoteBranch] {
			result.Branches = append(result.Branches, synchronizer.recordBranch(result, remoteBranch, BranchStatusNew, nil))
			continue
		}
		trackingError := synchronizer.repositoryManager.CreateTrackingBranch(executionContext, repositoryPath, remoteBranch)
		result.Branches = append(result.Branches, synchronizer.recordBranch(result, remoteBranch, BranchStatusNew, trackingError))
	}

	return synchronizer.finish(result, options)
}

func (synchronizer *Synchronizer) updateExistingRepository(executionContext context.Context, result ProcessingResult, repositoryPath string, options SyncOptions) ProcessingResult {
	if cleanError := synchronizer.repositoryManager.CleanWorktree(executionContext, repositoryPath); cleanError != nil {
		return synchronizer.finishWithFailure(result, cleanError.Error())
	}
	if fetchError := synchronizer.repositoryManager.FetchAllRemotes(executionContext, repositoryPath); fetchError != nil {
		return synchronizer.finishWithFailure(result, fetchError.Error())
	}

	remoteBranches, remoteListError := synchronizer.repositoryManager.ListRemoteBranches(executionContext, repositoryPath)
	if remoteListError != nil {
		return synchronizer.finishWithFailure(result, remoteListError.Error())
	}
	localBranches, localListError := synchronizer.repositoryManager.ListLocalBranches(executionContext, repositoryPath)
	if localListError != nil {
		return synchronizer.finishWithFailure(result, localListError.Error())
	}
	currentBranch, currentBranchError := synchronizer.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
	if currentBranchError != nil {
		return synchronizer.finishWithFailure(result, currentBranchError.Error())
	}

	localBranchSet := buildBranchSet(localBranches)
	remoteBranchSet := buildBranchSet(remoteBranches)

	for _, remoteBranch := range remoteBranches {
		switch {
		case !localBranchSet[remoteBranch]:
			trackingError := synchronizer.repositoryManager.CreateTrackingBranch(executionContext, repositoryPath, remoteBranch)
			result.Branches = append(result.Branches, synchronizer.recordBranch(result, remoteBranch, BranchStatusNew, trackingError))
		case remoteBranch == currentBranch:
			resetError := synchronizer.repositoryManager.ResetCurrentBranch(executionContext, repositoryPath, remoteBranch)
			result.Branches = append(result.Branches, synchronizer.recordBranch(result, remoteBranch, BranchStatusUpdated, resetError))
		default:
			updateError := synchronizer.repositoryManager.ForceSetBranch(executionContext, repositoryPath, remoteBranch)
			result.Branches = append(result.Branches, synchronizer.recordBranch(result, remoteBranch, BranchStatusUpdated, updateError))
		}
	}

	defaultBranch, defaultBranchError := synchronizer.repositoryManager.GetDefaultBranch(executionContext, repositoryPath)
	if defaultBranchError != nil {
		return synchronizer.finishWithFailure(result, defaultBranchError.Error())
	}
	if checkoutError := synchronizer.repositoryManager.CheckoutBranch(executionContext, repositoryPath, defaultBranch); checkoutError != nil {
		return synchronizer.finishWithFailure(result, checkoutError.Error())
	}

	if options.PruneDeletedBranches {
		for _, localBranch := range localBranches {
			if remoteBranchSet[localBranch] || localBranch == defaultBranch {
				continue
			}
			if deletionError := synchronizer.repositoryManager.DeleteLocalBranch(executionContext, repositoryPath, localBranch); deletionError != nil {
				result.Branches = append(result.Branches, synchronizer.recordBranch(result, localBranch, BranchStatusFailed, deletionError))
				continue
			}
			synchronizer.logger.Info(logMessageBranchPrunedConstant,
				zap.String(logFieldDirectoryConstant, result.DirectoryName),
				zap.String(logFieldBranchNameConstant, localBranch),
			)
		}
	}

	return synchronizer.finish(result, options)
}

func (synchronizer *Synchronizer) recordBranch(result ProcessingResult, branchName string, successStatus BranchStatus, operationError error) BranchRecord {
	if operationError != nil {
		synchronizer.logger.Warn(logMessageBranchFailedConstant,
			zap.String(logFieldDirectoryConstant, result.DirectoryName),
			zap.String(logFieldBranchNameConstant, branchName),
			zap.String(logFieldFailureReasonConstant, operationError.Error()),
		)
		return BranchRecord{Name: branchName, Status: BranchStatusFailed, Message: operationError.Error()}
	}

	synchronizer.logger.Info(logMessageBranchSynchronizedConstant,
		zap.String(logFieldDirectoryConstant, result.DirectoryName),
		zap.String(logFieldBranchNameConstant, branchName),
		zap.String(logFieldBranchStatusConstant, string(successStatus)),
	)
	return BranchRecord{Name: branchName, Status: successStatus}
}

func (synchronizer *Synchronizer) finish(result ProcessingResult, options SyncOptions) ProcessingResult {
	failedBranchCount := countBranchesWithStatus(result.Branches, BranchStatusFailed)
	result.Succeeded = true
	if failedBranchCount > 0 && options.FailOnBranchErrors {
		result.Succeeded = false
		result.FailureMessage = fmt.Sprintf(branchFailureSummaryTemplateConstant, failedBranchCount)
	}

	logMessage := logMessageRepositorySynchronizedConstant
	if !result.Succeeded {
		logMessage = logMessageRepositoryFailedConstant
	}
	synchronizer.logger.Info(logMessage,
		zap.String(logFieldReferenceConstant, result.Reference),
		zap.String(logFieldDirectoryConstant, result.DirectoryName),
		zap.Int(logFieldNewBranchCountConstant, countBranchesWithStatus(result.Branches, BranchStatusNew)),
		zap.Int(logFieldUpdatedBranchCountConstant, countBranchesWithStatus(result.Branches, BranchStatusUpdated)),
		zap.Int(logFieldFailedBranchCountConstant, failedBranchCount),
	)

	return result
}

func (synchronizer *Synchronizer) finishWithFailure(result ProcessingResult, failureMessage string) ProcessingResult {
	result.Succeeded = false
	result.FailureMessage = failureMessage
	synchronizer.logger.Warn(logMessageRepositoryFailedConstant,
		zap.String(logFieldReferenceConstant, result.Reference),
		zap.String(logFieldDirectoryConstant, result.DirectoryName),
		zap.String(logFieldFailureReasonConstant, failureMessage),
	)
	return result
}

func buildBranchSet(branchNames []string) map[string]bool {
	branchSet := make(map[string]bool, len(branchNames))
	for _, branchName := range branchNames {
		branchSet[branchName] = true
	}
	return branchSet
}
