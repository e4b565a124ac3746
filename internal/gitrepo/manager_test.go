package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reporover/reporover/internal/execshell"
	"github.com/reporover/reporover/internal/gitrepo"
)

const testRepositoryPathConstant = "/mirrors/acme_widget"

type scriptedGitExecutor struct {
	outputsBySubcommand map[string]string
	errorsBySubcommand  map[string]error
	recordedCommands    []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)

	subcommand := ""
	if len(details.Arguments) > 0 {
		subcommand = details.Arguments[0]
	}

	if executionError, exists := executor.errorsBySubcommand[subcommand]; exists && executionError != nil {
		return execshell.ExecutionResult{}, executionError
	}
	return execshell.ExecutionResult{StandardOutput: executor.outputsBySubcommand[subcommand]}, nil
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestListRemoteBranchesSkipsRemoteHead(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		outputsBySubcommand: map[string]string{
			"for-each-ref": "refs/remotes/origin/HEAD\nrefs/remotes/origin/main\nrefs/remotes/origin/dev\nrefs/remotes/origin/feature/login\n",
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	branchNames, listError := manager.ListRemoteBranches(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"main", "dev", "feature/login"}, branchNames)
	require.Equal(testInstance, testRepositoryPathConstant, executor.recordedCommands[0].WorkingDirectory)
}

func TestListLocalBranchesParsesShortReferences(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		outputsBySubcommand: map[string]string{
			"for-each-ref": "main\ndev\n",
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	branchNames, listError := manager.ListLocalBranches(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"main", "dev"}, branchNames)
}

func TestGetDefaultBranchParsesSymbolicReference(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		outputsBySubcommand: map[string]string{
			"ls-remote": "ref: refs/heads/main\tHEAD\n0f3a7c9f1d2e HEAD\n",
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	defaultBranch, resolveError := manager.GetDefaultBranch(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "main", defaultBranch)
}

func TestGetDefaultBranchFallsBackToCurrentBranch(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		outputsBySubcommand: map[string]string{
			"rev-parse": "master\n",
		},
		errorsBySubcommand: map[string]error{
			"ls-remote": errors.New("could not resolve host"),
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	defaultBranch, resolveError := manager.GetDefaultBranch(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "master", defaultBranch)
}

func TestGetDefaultBranchReportsFailureWhenNoSourceAvailable(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		errorsBySubcommand: map[string]error{
			"ls-remote": errors.New("could not resolve host"),
			"rev-parse": errors.New("not a git repository"),
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	_, resolveError := manager.GetDefaultBranch(context.Background(), testRepositoryPathConstant)
	require.ErrorContains(testInstance, resolveError, "failed to determine default branch")
}

func TestCleanWorktreeDiscardsModificationsBeforeUntrackedFiles(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.CleanWorktree(context.Background(), testRepositoryPathConstant))
	require.Len(testInstance, executor.recordedCommands, 2)
	require.Equal(testInstance, []string{"reset", "--hard"}, executor.recordedCommands[0].Arguments)
	require.Equal(testInstance, []string{"clean", "-fd"}, executor.recordedCommands[1].Arguments)
}

func TestBranchOperationsIssueExpectedGitCommands(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.CreateTrackingBranch(context.Background(), testRepositoryPathConstant, "dev"))
	require.NoError(testInstance, manager.ForceSetBranch(context.Background(), testRepositoryPathConstant, "dev"))
	require.NoError(testInstance, manager.ResetCurrentBranch(context.Background(), testRepositoryPathConstant, "main"))
	require.NoError(testInstance, manager.DeleteLocalBranch(context.Background(), testRepositoryPathConstant, "stale"))
	require.NoError(testInstance, manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, "main"))

	require.Equal(testInstance, []string{"branch", "--track", "dev", "origin/dev"}, executor.recordedCommands[0].Arguments)
	require.Equal(testInstance, []string{"branch", "--force", "dev", "origin/dev"}, executor.recordedCommands[1].Arguments)
	require.Equal(testInstance, []string{"reset", "--hard", "origin/main"}, executor.recordedCommands[2].Arguments)
	require.Equal(testInstance, []string{"branch", "--delete", "--force", "stale"}, executor.recordedCommands[3].Arguments)
	require.Equal(testInstance, []string{"checkout", "main"}, executor.recordedCommands[4].Arguments)
}

func TestCloneAndFetchWrapExecutorFailures(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		errorsBySubcommand: map[string]error{
			"clone": errors.New("authentication failed"),
			"fetch": errors.New("connection reset"),
		},
	}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	cloneError := manager.CloneRepository(context.Background(), "git@github.com:acme/widget.git", testRepositoryPathConstant)
	require.ErrorContains(testInstance, cloneError, "failed to clone git@github.com:acme/widget.git")

	fetchError := manager.FetchAllRemotes(context.Background(), testRepositoryPathConstant)
	require.ErrorContains(testInstance, fetchError, "failed to fetch remote references")
}

func TestGitCommandsDisableTerminalPrompts(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.FetchAllRemotes(context.Background(), testRepositoryPathConstant))
	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, "0", executor.recordedCommands[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}
