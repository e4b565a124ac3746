package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reporover/reporover/internal/execshell"
)

const (
	originRemoteNameConstant                    = "origin"
	remoteBranchReferencePrefixConstant         = "refs/remotes/origin/"
	localBranchReferencePrefixConstant          = "refs/heads"
	remoteHeadReferenceNameConstant             = "HEAD"
	remoteBranchReferenceTemplateConstant       = "origin/%s"
	symbolicReferencePrefixConstant             = "ref: refs/heads/"
	gitCloneSubcommandConstant                  = "clone"
	gitFetchSubcommandConstant                  = "fetch"
	gitCleanSubcommandConstant                  = "clean"
	gitResetSubcommandConstant                  = "reset"
	gitCheckoutSubcommandConstant               = "checkout"
	gitBranchSubcommandConstant                 = "branch"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitLSRemoteSubcommandConstant               = "ls-remote"
	gitForEachRefSubcommandConstant             = "for-each-ref"
	gitTagsFlagConstant                         = "--tags"
	gitForceCleanFlagConstant                   = "-fd"
	gitHardResetFlagConstant                    = "--hard"
	gitTrackFlagConstant                        = "--track"
	gitForceFlagConstant                        = "--force"
	gitDeleteFlagConstant                       = "--delete"
	gitAbbrevRefFlagConstant                    = "--abbrev-ref"
	gitSymrefFlagConstant                       = "--symref"
	gitReferenceFormatFlagConstant              = "--format=%(refname)"
	gitShortReferenceFormatFlagConstant         = "--format=%(refname:short)"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	executorNotConfiguredMessageConstant        = "git executor not configured"
	cloneFailureTemplateConstant                = "failed to clone %s: %w"
	fetchFailureTemplateConstant                = "failed to fetch remote references: %w"
	cleanFailureTemplateConstant                = "failed to clean working tree: %w"
	resetFailureTemplateConstant                = "failed to discard local modifications: %w"
	remoteBranchListFailureTemplateConstant     = "failed to list remote branches: %w"
	localBranchListFailureTemplateConstant      = "failed to list local branches: %w"
	trackingBranchFailureTemplateConstant       = "failed to create tracking branch %q: %w"
	branchUpdateFailureTemplateConstant         = "failed to update branch %q: %w"
	branchDeletionFailureTemplateConstant       = "failed to delete branch %q: %w"
	checkoutFailureTemplateConstant             = "failed to checkout branch %q: %w"
	currentBranchFailureTemplateConstant        = "failed to identify current branch: %w"
	defaultBranchFailureTemplateConstant        = "failed to determine default branch: %w"
)

// ErrExecutorNotConfigured indicates the repository manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-level git operations for the synchronizer.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CloneRepository clones the remote repository into the destination path with all remote branches.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, destinationPath string) error {
	_, executionError := manager.executeGit(executionContext, "", gitCloneSubcommandConstant, remoteURL, destinationPath)
	if executionError != nil {
		return fmt.Errorf(cloneFailureTemplateConstant, remoteURL, executionError)
	}
	return nil
}

// FetchAllRemotes downloads every remote branch and tag for the repository.
func (manager *RepositoryManager) FetchAllRemotes(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitFetchSubcommandConstant, gitTagsFlagConstant, originRemoteNameConstant)
	if executionError != nil {
		return fmt.Errorf(fetchFailureTemplateConstant, executionError)
	}
	return nil
}

// CleanWorktree discards uncommitted modifications and removes untracked files.
// The mirror directory is treated as read-only replica state, so losing local
// edits here is the intended behavior.
func (manager *RepositoryManager) CleanWorktree(executionContext context.Context, repositoryPath string) error {
	_, resetError := manager.executeGit(executionContext, repositoryPath, gitResetSubcommandConstant, gitHardResetFlagConstant)
	if resetError != nil {
		return fmt.Errorf(resetFailureTemplateConstant, resetError)
	}

	_, cleanError := manager.executeGit(executionContext, repositoryPath, gitCleanSubcommandConstant, gitForceCleanFlagConstant)
	if cleanError != nil {
		return fmt.Errorf(cleanFailureTemplateConstant, cleanError)
	}
	return nil
}

// ListRemoteBranches returns the names of all branches on the origin remote, excluding HEAD.
func (manager *RepositoryManager) ListRemoteBranches(executionContext context.Context, repositoryPath string) ([]string, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, gitForEachRefSubcommandConstant, gitReferenceFormatFlagConstant, strings.TrimSuffix(remoteBranchReferencePrefixConstant, pathSeparatorConstant))
	if executionError != nil {
		return nil, fmt.Errorf(remoteBranchListFailureTemplateConstant, executionError)
	}

	branchNames := make([]string, 0)
	for _, referenceLine := range splitOutputLines(executionResult.StandardOutput) {
		branchName := strings.TrimPrefix(referenceLine, remoteBranchReferencePrefixConstant)
		if branchName == remoteHeadReferenceNameConstant {
			continue
		}
		branchNames = append(branchNames, branchName)
	}
	return branchNames, nil
}

// ListLocalBranches returns the names of all local branches in the repository.
func (manager *RepositoryManager) ListLocalBranches(executionContext context.Context, repositoryPath string) ([]string, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, gitForEachRefSubcommandConstant, gitShortReferenceFormatFlagConstant, localBranchReferencePrefixConstant)
	if executionError != nil {
		return nil, fmt.Errorf(localBranchListFailureTemplateConstant, executionError)
	}
	return splitOutputLines(executionResult.StandardOutput), nil
}

// GetCurrentBranch reports the branch currently checked out in the repository.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, remoteHeadReferenceNameConstant)
	if executionError != nil {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CreateTrackingBranch creates a local branch tracking the same-named origin branch.
func (manager *RepositoryManager) CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	remoteReference := fmt.Sprintf(remoteBranchReferenceTemplateConstant, branchName)
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitTrackFlagConstant, branchName, remoteReference)
	if executionError != nil {
		return fmt.Errorf(trackingBranchFailureTemplateConstant, branchName, executionError)
	}
	return nil
}

// ForceSetBranch repoints an existing local branch at the origin branch tip.
func (manager *RepositoryManager) ForceSetBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	remoteReference := fmt.Sprintf(remoteBranchReferenceTemplateConstant, branchName)
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitForceFlagConstant, branchName, remoteReference)
	if executionError != nil {
		return fmt.Errorf(branchUpdateFailureTemplateConstant, branchName, executionError)
	}
	return nil
}

// ResetCurrentBranch hard-resets the checked-out branch to the origin branch tip.
// Git refuses branch --force for the current branch, so the synchronizer routes
// the checked-out branch through this operation instead.
func (manager *RepositoryManager) ResetCurrentBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	remoteReference := fmt.Sprintf(remoteBranchReferenceTemplateConstant, branchName)
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitResetSubcommandConstant, gitHardResetFlagConstant, remoteReference)
	if executionError != nil {
		return fmt.Errorf(branchUpdateFailureTemplateConstant, branchName, executionError)
	}
	return nil
}

// DeleteLocalBranch removes a local branch regardless of its merge state.
func (manager *RepositoryManager) DeleteLocalBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitDeleteFlagConstant, gitForceFlagConstant, branchName)
	if executionError != nil {
		return fmt.Errorf(branchDeletionFailureTemplateConstant, branchName, executionError)
	}
	return nil
}

// CheckoutBranch switches the repository working tree to the named branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, branchName)
	if executionError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, branchName, executionError)
	}
	return nil
}

// GetDefaultBranch resolves the branch the remote designates as HEAD, falling
// back to the currently checked-out branch when the remote cannot be queried.
func (manager *RepositoryManager) GetDefaultBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, gitLSRemoteSubcommandConstant, gitSymrefFlagConstant, originRemoteNameConstant, remoteHeadReferenceNameConstant)
	if executionError == nil {
		for _, outputLine := range splitOutputLines(executionResult.StandardOutput) {
			if !strings.HasPrefix(outputLine, symbolicReferencePrefixConstant) {
				continue
			}
			referenceRemainder := strings.TrimPrefix(outputLine, symbolicReferencePrefixConstant)
			branchFields := strings.Fields(referenceRemainder)
			if len(branchFields) > 0 {
				return branchFields[0], nil
			}
		}
	}

	currentBranch, currentBranchError := manager.GetCurrentBranch(executionContext, repositoryPath)
	if currentBranchError != nil {
		return "", fmt.Errorf(defaultBranchFailureTemplateConstant, currentBranchError)
	}
	return currentBranch, nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	}
	return manager.executor.ExecuteGit(executionContext, commandDetails)
}

func splitOutputLines(output string) []string {
	outputLines := make([]string, 0)
	for _, candidateLine := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(candidateLine)
		if len(trimmedLine) == 0 {
			continue
		}
		outputLines = append(outputLines, trimmedLine)
	}
	return outputLines
}
