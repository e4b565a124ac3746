package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: warn\n  log_format: console\n  log_file_directory: \"\"\ncommands:\n  repo_sync:\n    output: /tmp/mirrors\n    prune: true\n"
)

func changeTestWorkingDirectory(testInstance *testing.T, targetDirectory string) {
	testInstance.Helper()
	originalDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(targetDirectory))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(originalDirectory))
	})
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	changeTestWorkingDirectory(testInstance, testInstance.TempDir())

	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logDirectoryFlagNameConstant, ""))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "./repos", application.configuration.Commands.RepoSync.OutputDirectory)
	require.False(testInstance, application.configuration.Commands.RepoSync.PruneDeletedBranches)
	require.False(testInstance, application.configuration.Commands.RepoSync.FailOnBranchErrors)
	require.Empty(testInstance, application.configuration.Commands.OrgList.OutputPath)
}

func TestInitializeConfigurationReadsConfigurationFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	changeTestWorkingDirectory(testInstance, temporaryDirectory)
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	writeTestConfiguration(testInstance, configurationPath, testConfigurationContentConstant)

	application := NewApplication()
	application.configurationFilePath = configurationPath

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "/tmp/mirrors", application.configuration.Commands.RepoSync.OutputDirectory)
	require.True(testInstance, application.configuration.Commands.RepoSync.PruneDeletedBranches)
	require.True(testInstance, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationPrefersFlagOverrides(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	changeTestWorkingDirectory(testInstance, temporaryDirectory)
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	writeTestConfiguration(testInstance, configurationPath, testConfigurationContentConstant)

	application := NewApplication()
	application.configurationFilePath = configurationPath
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "structured"))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	changeTestWorkingDirectory(testInstance, testInstance.TempDir())

	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "loud"))

	require.Error(testInstance, application.initializeConfiguration(application.rootCommand))
}

func writeTestConfiguration(testInstance *testing.T, configurationPath string, configurationContent string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o644))
}
