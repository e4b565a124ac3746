package mirror_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reporover/reporover/internal/gitrepo"
	"github.com/reporover/reporover/internal/mirror"
)

const (
	testReferenceConstant       = "git@github.com:acme/widget.git"
	testDestinationRootConstant = "/mirrors"
	testDirectoryNameConstant   = "acme_widget"
)

type fakeRepositoryManager struct {
	remoteBranches  []string
	localBranches   []string
	currentBranch   string
	defaultBranch   string
	cloneError      error
	fetchError      error
	cleanError      error
	trackingErrors  map[string]error
	updateErrors    map[string]error
	deletionErrors  map[string]error
	clonedURLs      []string
	fetchedPaths    []string
	cleanedPaths    []string
	createdBranches []string
	forcedBranches  []string
	resetBranches   []string
	deletedBranches []string
	checkedOut      []string
}

func (manager *fakeRepositoryManager) CloneRepository(_ context.Context, remoteURL string, _ string) error {
	if manager.cloneError != nil {
		return manager.cloneError
	}
	manager.clonedURLs = append(manager.clonedURLs, remoteURL)
	return nil
}

func (manager *fakeRepositoryManager) FetchAllRemotes(_ context.Context, repositoryPath string) error {
	if manager.fetchError != nil {
		return manager.fetchError
	}
	manager.fetchedPaths = append(manager.fetchedPaths, repositoryPath)
	return nil
}

func (manager *fakeRepositoryManager) CleanWorktree(_ context.Context, repositoryPath string) error {
	if manager.cleanError != nil {
		return manager.cleanError
	}
	manager.cleanedPaths = append(manager.cleanedPaths, repositoryPath)
	return nil
}

func (manager *fakeRepositoryManager) ListRemoteBranches(_ context.Context, _ string) ([]string, error) {
	return manager.remoteBranches, nil
}

func (manager *fakeRepositoryManager) ListLocalBranches(_ context.Context, _ string) ([]string, error) {
	return manager.localBranches, nil
}

func (manager *fakeRepositoryManager) GetCurrentBranch(_ context.Context, _ string) (string, error) {
	return manager.currentBranch, nil
}

func (manager *fakeRepositoryManager) CreateTrackingBranch(_ context.Context, _ string, branchName string) error {
	if trackingError, exists := manager.trackingErrors[branchName]; exists {
		return trackingError
	}
	manager.createdBranches = append(manager.createdBranches, branchName)
	return nil
}

func (manager *fakeRepositoryManager) ForceSetBranch(_ context.Context, _ string, branchName string) error {
	if updateError, exists := manager.updateErrors[branchName]; exists {
		return updateError
	}
	manager.forcedBranches = append(manager.forcedBranches, branchName)
	return nil
}

func (manager *fakeRepositoryManager) ResetCurrentBranch(_ context.Context, _ string, branchName string) error {
	if updateError, exists := manager.updateErrors[branchName]; exists {
		return updateError
	}
	manager.resetBranches = append(manager.resetBranches, branchName)
	return nil
}

func (manager *fakeRepositoryManager) DeleteLocalBranch(_ context.Context, _ string, branchName string) error {
	if deletionError, exists := manager.deletionErrors[branchName]; exists {
		return deletionError
	}
	manager.deletedBranches = append(manager.deletedBranches, branchName)
	return nil
}

func (manager *fakeRepositoryManager) CheckoutBranch(_ context.Context, _ string, branchName string) error {
	manager.checkedOut = append(manager.checkedOut, branchName)
	return nil
}

func (manager *fakeRepositoryManager) GetDefaultBranch(_ context.Context, _ string) (string, error) {
	return manager.defaultBranch, nil
}

type fakeFileSystem struct {
	directories  map[string]bool
	files        map[string][]byte
	removedPaths []string
	createdPaths []string
	readError    error
}

func newFakeFileSystem() *fakeFileSystem {
	return &fakeFileSystem{directories: map[string]bool{}, files: map[string][]byte{}}
}

func (fileSystem *fakeFileSystem) DirectoryExists(path string) (bool, error) {
	return fileSystem.directories[path], nil
}

func (fileSystem *fakeFileSystem) ReadFile(path string) ([]byte, error) {
	if fileSystem.readError != nil {
		return nil, fileSystem.readError
	}
	fileContent, exists := fileSystem.files[path]
	if !exists {
		return nil, fs.ErrNotExist
	}
	return fileContent, nil
}

func (fileSystem *fakeFileSystem) MkdirAll(path string, _ fs.FileMode) error {
	fileSystem.createdPaths = append(fileSystem.createdPaths, path)
	return nil
}

func (fileSystem *fakeFileSystem) RemoveAll(path string) error {
	fileSystem.removedPaths = append(fileSystem.removedPaths, path)
	return nil
}

func buildSynchronizer(testInstance *testing.T, manager *fakeRepositoryManager, fileSystem *fakeFileSystem, logger *zap.Logger) *mirror.Synchronizer {
	testInstance.Helper()
	synchronizer, creationError := mirror.NewSynchronizer(mirror.Dependencies{
		Logger:            logger,
		RepositoryManager: manager,
		FileSystem:        fileSystem,
	})
	require.NoError(testInstance, creationError)
	return synchronizer
}

func TestNewSynchronizerValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  mirror.Dependencies
		expectedError error
	}{
		{
			name:          "missing_repository_manager",
			dependencies:  mirror.Dependencies{FileSystem: newFakeFileSystem()},
			expectedError: mirror.ErrRepositoryManagerNotConfigured,
		},
		{
			name:          "missing_file_system",
			dependencies:  mirror.Dependencies{RepositoryManager: &fakeRepositoryManager{}},
			expectedError: mirror.ErrFileSystemNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			synchronizer, creationError := mirror.NewSynchronizer(testCase.dependencies)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, synchronizer)
		})
	}
}

func TestSyncRejectsUnparseableReference(testInstance *testing.T) {
	synchronizer := buildSynchronizer(testInstance, &fakeRepositoryManager{}, newFakeFileSystem(), zap.NewNop())

	_, syncError := synchronizer.Sync(context.Background(), "not-a-reference", mirror.SyncOptions{DestinationRoot: testDestinationRootConstant})
	var parseError gitrepo.RemoteURLParseError
	require.ErrorAs(testInstance, syncError, &parseError)
}

func TestSyncClonesAbsentRepositoryWithTrackingBranches(testInstance *testing.T) {
	manager := &fakeRepositoryManager{
		remoteBranches: []string{"main", "dev", "feature/login"},
		localBranches:  []string{"main"},
	}
	synchronizer := buildSynchronizer(testInstance, manager, newFakeFileSystem(), zap.NewNop())

	result, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{DestinationRoot: testDestinationRootConstant})
	require.NoError(testInstance, syncError)

	require.True(testInstance, result.Succeeded)
	require.Equal(testInstance, testDirectoryNameConstant, result.DirectoryName)
	require.Equal(testInstance, []string{testReferenceConstant}, manager.clonedURLs)
	require.Equal(testInstance, []string{"dev", "feature/login"}, manager.createdBranches)
	require.Len(testInstance, result.Branches, 3)
	for _, branchRecord := range result.Branches {
		require.Equal(testInstance, mirror.BranchStatusNew, branchRecord.Status)
	}
}

func TestSyncReportsCloneFailure(testInstance *testing.T) {
	manager := &fakeRepositoryManager{cloneError: errors.New("authentication failed")}
	synchronizer := buildSynchronizer(testInstance, manager, newFakeFileSystem(), zap.NewNop())

	result, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{DestinationRoot: testDestinationRootConstant})
	require.NoError(testInstance, syncError)
	require.False(testInstance, result.Succeeded)
	require.Contains(testInstance, result.FailureMessage, "authentication failed")
}

func TestSyncUpdatesPresentRepository(testInstance *testing.T) {
	manager := &fakeRepositoryManager{
		remoteBranches: []string{"main", "dev", "feature/login"},
		localBranches:  []string{"main", "dev"},
		currentBranch:  "main",
		defaultBranch:  "main",
	}
	fileSystem := newFakeFileSystem()
	fileSystem.directories[filepath.Join(testDestinationRootConstant, testDirectoryNameConstant)] = true
	synchronizer := buildSynchronizer(testInstance, manager, fileSystem, zap.NewNop())

	result, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{DestinationRoot: testDestinationRootConstant})
	require.NoError(testInstance, syncError)

	require.True(testInstance, result.Succeeded)
	require.Empty(testInstance, manager.clonedURLs)
	require.Len(testInstance, manager.cleanedPaths, 1)
	require.Len(testInstance, manager.fetchedPaths, 1)
	require.Equal(testInstance, []string{"feature/login"}, manager.createdBranches)
	require.Equal(testInstance, []string{"dev"}, manager.forcedBranches)
	require.Equal(testInstance, []string{"main"}, manager.resetBranches)
	require.Equal(testInstance, []string{"main"}, manager.checkedOut)

	statusesByName := map[string]mirror.BranchStatus{}
	for _, branchRecord := range result.Branches {
		statusesByName[branchRecord.Name] = branchRecord.Status
	}
	require.Equal(testInstance, mirror.BranchStatusUpdated, statusesByName["main"])
	require.Equal(testInstance, mirror.BranchStatusUpdated, statusesByName["dev"])
	require.Equal(testInstance, mirror.BranchStatusNew, statusesByName["feature/login"])
}

func TestSyncIsolatesBranchFailures(testInstance *testing.T) {
	manager := &fakeRepositoryManager{
		remoteBranches: []string{"main", "dev", "feature/login"},
		localBranches:  []string{"main", "dev", "feature/login"},
		currentBranch:  "main",
		defaultBranch:  "main",
		updateErrors:   map[string]error{"dev": errors.New("cannot lock ref")},
	}
	fileSystem := newFakeFileSystem()
	fileSystem.directories[filepath.Join(testDestinationRootConstant, testDirectoryNameConstant)] = true
	synchronizer := buildSynchronizer(testInstance, manager, fileSystem, zap.NewNop())

	result, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{DestinationRoot: testDestinationRootConstant})
	require.NoError(testInstance, syncError)

	require.True(testInstance, result.Succeeded)
	require.Equal(testInstance, []string{"feature/login"}, manager.forcedBranches)
	require.Equal(testInstance, []string{"main"}, manager.resetBranches)

	statusesByName := map[string]mirror.BranchStatus{}
	for _, branchRecord := range result.Branches {
		statusesByName[branchRecord.Name] = branchRecord.Status
	}
	require.Equal(testInstance, mirror.BranchStatusFailed, statusesByName["dev"])
	require.Equal(testInstance, mirror.BranchStatusUpdated, statusesByName["main"])
	require.Equal(testInstance, mirror.BranchStatusUpdated, statusesByName["feature/login"])
}

func TestSyncBranchFailuresMarkRepositoryWhenPolicyDemands(testInstance *testing.T) {
	manager := &fakeRepositoryManager{
		remoteBranches: []string{"main", "dev"},
		localBranches:  []string{"main", "dev"},
		currentBranch:  "main",
		defaultBranch:  "main",
		updateErrors:   map[string]error{"dev": errors.New("cannot lock ref")},
	}
	fileSystem := newFakeFileSystem()
	fileSystem.directories[filepath.Join(testDestinationRootConstant, testDirectoryNameConstant)] = true
	synchronizer := buildSynchronizer(testInstance, manager, fileSystem, zap.NewNop())

	result, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{
		DestinationRoot:    testDestinationRootConstant,
		FailOnBranchErrors: true,
	})
	require.NoError(testInstance, syncError)
	require.False(testInstance, result.Succeeded)
	require.Contains(testInstance, result.FailureMessage, "1 branches failed")
}

func TestSyncPrunesDeletedBranchesOnlyWhenRequested(testInstance *testing.T) {
	testCases := []struct {
		name            string
		pruneRequested  bool
		expectedDeleted []string
	}{
		{name: "additive_only_by_default", pruneRequested: false, expectedDeleted: nil},
		{name: "prune_when_requested", pruneRequested: true, expectedDeleted: []string{"stale"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager := &fakeRepositoryManager{
				remoteBranches: []string{"main"},
				localBranches:  []string{"main", "stale"},
				currentBranch:  "main",
				defaultBranch:  "main",
			}
			fileSystem := newFakeFileSystem()
			fileSystem.directories[filepath.Join(testDestinationRootConstant, testDirectoryNameConstant)] = true
			synchronizer := buildSynchronizer(testInstance, manager, fileSystem, zap.NewNop())

			result, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{
				DestinationRoot:      testDestinationRootConstant,
				PruneDeletedBranches: testCase.pruneRequested,
			})
			require.NoError(testInstance, syncError)
			require.True(testInstance, result.Succeeded)
			require.Equal(testInstance, testCase.expectedDeleted, manager.deletedBranches)
		})
	}
}

func TestSyncChecksOutDefaultBranchAfterUpdate(testInstance *testing.T) {
	manager := &fakeRepositoryManager{
		remoteBranches: []string{"main", "dev"},
		localBranches:  []string{"main", "dev"},
		currentBranch:  "dev",
		defaultBranch:  "main",
	}
	fileSystem := newFakeFileSystem()
	fileSystem.directories[filepath.Join(testDestinationRootConstant, testDirectoryNameConstant)] = true
	synchronizer := buildSynchronizer(testInstance, manager, fileSystem, zap.NewNop())

	result, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{DestinationRoot: testDestinationRootConstant})
	require.NoError(testInstance, syncError)
	require.True(testInstance, result.Succeeded)
	require.Equal(testInstance, []string{"main"}, manager.checkedOut)
	require.Equal(testInstance, []string{"dev"}, manager.resetBranches)
	require.Equal(testInstance, []string{"main"}, manager.forcedBranches)
}

func TestSyncEmitsStructuredLifecycleEvents(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zap.InfoLevel)
	manager := &fakeRepositoryManager{
		remoteBranches: []string{"main"},
		localBranches:  []string{"main"},
	}
	synchronizer := buildSynchronizer(testInstance, manager, newFakeFileSystem(), zap.New(observedCore))

	_, syncError := synchronizer.Sync(context.Background(), testReferenceConstant, mirror.SyncOptions{DestinationRoot: testDestinationRootConstant})
	require.NoError(testInstance, syncError)

	require.Equal(testInstance, 1, observedLogs.FilterMessage("Repository synchronization started").Len())
	require.Equal(testInstance, 1, observedLogs.FilterMessage("Repository cloned").Len())
	require.Equal(testInstance, 1, observedLogs.FilterMessage("Repository synchronized").Len())
}
