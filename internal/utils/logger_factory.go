package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logDirectoryCreationTemplateConstant = "failed to create log directory: %w"
	logFileCreationTemplateConstant      = "failed to create log file: %w"
	logFileNameTemplateConstant          = "reporover_%s.log"
	logFileTimestampLayoutConstant       = "20060102_150405"
	logDirectoryPermissionsConstant      = 0o755
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerOutputs carries the constructed logger together with the resolved log file path.
type LoggerOutputs struct {
	Logger      *zap.Logger
	LogFilePath string
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	consoleCore, coreError := factory.buildCore(requestedLogLevel, requestedLogFormat, zapcore.Lock(os.Stderr))
	if coreError != nil {
		return nil, coreError
	}
	return zap.New(consoleCore), nil
}

// CreateLoggerOutputs produces a zap.Logger that additionally tees events into a timestamped log file
// under the provided directory. An empty directory yields console-only logging.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat, logFileDirectory string) (LoggerOutputs, error) {
	consoleCore, coreError := factory.buildCore(requestedLogLevel, requestedLogFormat, zapcore.Lock(os.Stderr))
	if coreError != nil {
		return LoggerOutputs{}, coreError
	}

	if len(logFileDirectory) == 0 {
		return LoggerOutputs{Logger: zap.New(consoleCore)}, nil
	}

	if directoryError := os.MkdirAll(logFileDirectory, logDirectoryPermissionsConstant); directoryError != nil {
		return LoggerOutputs{}, fmt.Errorf(logDirectoryCreationTemplateConstant, directoryError)
	}

	logFileName := fmt.Sprintf(logFileNameTemplateConstant, time.Now().Format(logFileTimestampLayoutConstant))
	logFilePath := filepath.Join(logFileDirectory, logFileName)

	logFile, fileError := os.Create(logFilePath)
	if fileError != nil {
		return LoggerOutputs{}, fmt.Errorf(logFileCreationTemplateConstant, fileError)
	}

	fileCore, fileCoreError := factory.buildCore(requestedLogLevel, LogFormatStructured, zapcore.Lock(logFile))
	if fileCoreError != nil {
		return LoggerOutputs{}, fileCoreError
	}

	combinedCore := zapcore.NewTee(consoleCore, fileCore)
	return LoggerOutputs{Logger: zap.New(combinedCore), LogFilePath: logFilePath}, nil
}

func (factory *LoggerFactory) buildCore(requestedLogLevel LogLevel, requestedLogFormat LogFormat, syncer zapcore.WriteSyncer) (zapcore.Core, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoder, encoderError := factory.buildEncoder(requestedLogFormat)
	if encoderError != nil {
		return nil, encoderError
	}

	return zapcore.NewCore(encoder, syncer, zap.NewAtomicLevelAt(zapLogLevel)), nil
}

func (factory *LoggerFactory) buildEncoder(requestedLogFormat LogFormat) (zapcore.Encoder, error) {
	switch requestedLogFormat {
	case LogFormatStructured:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	case LogFormatConsole:
		encoderConfiguration := zap.NewDevelopmentEncoderConfig()
		return zapcore.NewConsoleEncoder(encoderConfiguration), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}
}
