package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reporover/reporover/internal/utils"
)

const (
	testUnsupportedLogLevelConstant  = "verbose"
	testUnsupportedLogFormatConstant = "xml"
	testLogFilePrefixConstant        = "reporover_"
	testLogFileSuffixConstant        = ".log"
)

func TestCreateLoggerValidatesInputs(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logLevel    utils.LogLevel
		logFormat   utils.LogFormat
		expectError bool
	}{
		{name: "structured_info", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatStructured},
		{name: "console_debug", logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatConsole},
		{name: "unsupported_level", logLevel: utils.LogLevel(testUnsupportedLogLevelConstant), logFormat: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_format", logLevel: utils.LogLevelInfo, logFormat: utils.LogFormat(testUnsupportedLogFormatConstant), expectError: true},
	}

	loggerFactory := utils.NewLoggerFactory()

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			logger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		})
	}
}

func TestCreateLoggerOutputsWithoutDirectorySkipsLogFile(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()

	loggerOutputs, creationError := loggerFactory.CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatStructured, "")
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, loggerOutputs.Logger)
	require.Empty(testInstance, loggerOutputs.LogFilePath)
}

func TestCreateLoggerOutputsCreatesTimestampedLogFile(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()
	logDirectory := filepath.Join(testInstance.TempDir(), "logs")

	loggerOutputs, creationError := loggerFactory.CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatStructured, logDirectory)
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, loggerOutputs.Logger)

	logFileName := filepath.Base(loggerOutputs.LogFilePath)
	require.True(testInstance, strings.HasPrefix(logFileName, testLogFilePrefixConstant))
	require.True(testInstance, strings.HasSuffix(logFileName, testLogFileSuffixConstant))

	loggerOutputs.Logger.Info("synchronization event")
	require.NoError(testInstance, loggerOutputs.Logger.Sync())

	logFileContent, readError := os.ReadFile(loggerOutputs.LogFilePath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(logFileContent), "synchronization event")
}
