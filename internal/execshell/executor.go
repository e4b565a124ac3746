package execshell

import (
	"context"

	"go.uber.org/zap"
)

const (
	commandStartedMessageConstant    = "external command started"
	commandCompletedMessageConstant  = "external command completed"
	commandFailedMessageConstant     = "external command failed"
	logFieldCommandConstant          = "command"
	logFieldArgumentsConstant        = "arguments"
	logFieldWorkingDirectoryConstant = "working_directory"
	logFieldExitCodeConstant         = "exit_code"
	logFieldStandardErrorConstant    = "standard_error"
)

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor coordinates external tool invocations with structured logging.
type ShellExecutor struct {
	logger               *zap.Logger
	commandRunner        CommandRunner
	messageFormatter     CommandMessageFormatter
	humanReadableLogging bool
}

// NewShellExecutor constructs a ShellExecutor from the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:               logger,
		commandRunner:        commandRunner,
		messageFormatter:     CommandMessageFormatter{},
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// ExecuteGit runs the git binary with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logCommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.logCommandFailed(command, executionResult, executor.messageFormatter.BuildExecutionFailureMessage(command, runError))
		return ExecutionResult{}, executionFailure
	}

	if executionResult.ExitCode != 0 {
		commandFailure := CommandFailedError{Command: command, Result: executionResult}
		executor.logCommandFailed(command, executionResult, executor.messageFormatter.BuildFailureMessage(command, executionResult))
		return ExecutionResult{}, commandFailure
	}

	executor.logCommandCompleted(command, executionResult)
	return executionResult, nil
}

func (executor *ShellExecutor) logCommandStarted(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Debug(executor.messageFormatter.BuildStartedMessage(command))
		return
	}

	executor.logger.Debug(
		commandStartedMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (executor *ShellExecutor) logCommandCompleted(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Debug(executor.messageFormatter.BuildSuccessMessage(command))
		return
	}

	executor.logger.Debug(
		commandCompletedMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}

func (executor *ShellExecutor) logCommandFailed(command ShellCommand, result ExecutionResult, humanReadableMessage string) {
	if executor.humanReadableLogging {
		executor.logger.Warn(humanReadableMessage)
		return
	}

	executor.logger.Warn(
		commandFailedMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, result.StandardError),
	)
}
