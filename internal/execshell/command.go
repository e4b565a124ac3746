package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	gitToolNameConstant                       = "git"
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedTemplateConstant             = "%s exited with code %d%s"
	commandExecutionFailedTemplateConstant    = "%s could not be executed: %s"
	standardErrorDetailTemplateConstant       = ": %s"
	commandDescriptionSeparatorConstant       = " "
)

// CommandName identifies an external executable supported by the executor.
type CommandName string

// CommandGit identifies the system git binary.
const CommandGit CommandName = CommandName(gitToolNameConstant)

// CommandDetails describes a single invocation of an external tool.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// Sentinel errors reported during executor construction.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the command failure including trimmed standard error output.
func (failure CommandFailedError) Error() string {
	standardErrorDetail := ""
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorDetail = fmt.Sprintf(standardErrorDetailTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedTemplateConstant, describeCommand(failure.Command), failure.Result.ExitCode, standardErrorDetail)
}

// CommandExecutionError reports a command that could not be started or observed.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, describeCommand(failure.Command), failure.Cause)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

func describeCommand(command ShellCommand) string {
	commandWords := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandWords, commandDescriptionSeparatorConstant)
}
