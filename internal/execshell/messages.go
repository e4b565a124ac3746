package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	commandArgumentsJoinSeparatorConstant   = " "
	flagArgumentPrefixConstant              = "-"
)

const (
	gitCloneSubcommandNameConstant      = "clone"
	gitFetchSubcommandNameConstant      = "fetch"
	gitCleanSubcommandNameConstant      = "clean"
	gitResetSubcommandNameConstant      = "reset"
	gitCheckoutSubcommandNameConstant   = "checkout"
	gitBranchSubcommandNameConstant     = "branch"
	gitLSRemoteSubcommandNameConstant   = "ls-remote"
	gitForEachRefSubcommandNameConstant = "for-each-ref"
)

const (
	gitCloneStartTemplateConstant                 = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant               = "Cloned %s into %s"
	gitCloneFailureTemplateConstant               = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant      = "Unable to clone %s into %s: %s"
	gitFetchStartTemplateConstant                 = "Fetching remote references in %s"
	gitFetchSuccessTemplateConstant               = "Fetched remote references in %s"
	gitFetchFailureTemplateConstant               = "Failed to fetch remote references in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant      = "Unable to fetch remote references in %s: %s"
	gitCleanStartTemplateConstant                 = "Removing untracked files in %s"
	gitCleanSuccessTemplateConstant               = "Removed untracked files in %s"
	gitCleanFailureTemplateConstant               = "Failed to remove untracked files in %s (exit code %d%s)"
	gitCleanExecutionFailureTemplateConstant      = "Unable to remove untracked files in %s: %s"
	gitResetStartTemplateConstant                 = "Discarding local modifications in %s"
	gitResetSuccessTemplateConstant               = "Discarded local modifications in %s"
	gitResetFailureTemplateConstant               = "Failed to discard local modifications in %s (exit code %d%s)"
	gitResetExecutionFailureTemplateConstant      = "Unable to discard local modifications in %s: %s"
	gitCheckoutStartTemplateConstant              = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant            = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant            = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant   = "Unable to switch %s to branch %s: %s"
	gitBranchStartTemplateConstant                = "Updating branch %s in %s"
	gitBranchSuccessTemplateConstant              = "Updated branch %s in %s"
	gitBranchFailureTemplateConstant              = "Failed to update branch %s in %s (exit code %d%s)"
	gitBranchExecutionFailureTemplateConstant     = "Unable to update branch %s in %s: %s"
	gitLSRemoteStartTemplateConstant              = "Querying remote references from %s"
	gitLSRemoteSuccessTemplateConstant            = "Queried remote references from %s"
	gitLSRemoteFailureTemplateConstant            = "Failed to query remote references from %s (exit code %d%s)"
	gitLSRemoteExecutionFailureTemplateConstant   = "Unable to query remote references from %s: %s"
	gitForEachRefStartTemplateConstant            = "Listing references in %s"
	gitForEachRefSuccessTemplateConstant          = "Listed references in %s"
	gitForEachRefFailureTemplateConstant          = "Failed to list references in %s (exit code %d%s)"
	gitForEachRefExecutionFailureTemplateConstant = "Unable to list references in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeCloneMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeBranchTargetMessage(command, result, failure, stage, gitCheckoutStartTemplateConstant, gitCheckoutSuccessTemplateConstant, gitCheckoutFailureTemplateConstant, gitCheckoutExecutionFailureTemplateConstant)
	case gitBranchSubcommandNameConstant:
		return formatter.describeBranchUpdateMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitFetchStartTemplateConstant, gitFetchSuccessTemplateConstant, gitFetchFailureTemplateConstant, gitFetchExecutionFailureTemplateConstant)
	case gitCleanSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitCleanStartTemplateConstant, gitCleanSuccessTemplateConstant, gitCleanFailureTemplateConstant, gitCleanExecutionFailureTemplateConstant)
	case gitResetSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitResetStartTemplateConstant, gitResetSuccessTemplateConstant, gitResetFailureTemplateConstant, gitResetExecutionFailureTemplateConstant)
	case gitLSRemoteSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitLSRemoteStartTemplateConstant, gitLSRemoteSuccessTemplateConstant, gitLSRemoteFailureTemplateConstant, gitLSRemoteExecutionFailureTemplateConstant)
	case gitForEachRefSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitForEachRefStartTemplateConstant, gitForEachRefSuccessTemplateConstant, gitForEachRefFailureTemplateConstant, gitForEachRefExecutionFailureTemplateConstant)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	remoteLabel := formatter.argumentFromEnd(arguments, 2)
	destinationLabel := formatter.argumentFromEnd(arguments, 1)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCloneStartTemplateConstant, remoteLabel, destinationLabel)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, remoteLabel, destinationLabel)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, remoteLabel, destinationLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, remoteLabel, destinationLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeBranchUpdateMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	branchLabel := formatter.firstPositionalArgument(command.Details.Arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitBranchStartTemplateConstant, branchLabel, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitBranchSuccessTemplateConstant, branchLabel, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitBranchFailureTemplateConstant, branchLabel, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitBranchExecutionFailureTemplateConstant, branchLabel, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeBranchTargetMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	branchLabel := formatter.firstPositionalArgument(command.Details.Arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory, branchLabel)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory, branchLabel)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, workingDirectory, branchLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureTemplate, workingDirectory, branchLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectoryMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), commandArgumentsJoinSeparatorConstant)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) firstPositionalArgument(arguments []string) string {
	for argumentIndex := 1; argumentIndex < len(arguments); argumentIndex++ {
		trimmedArgument := strings.TrimSpace(arguments[argumentIndex])
		if strings.HasPrefix(trimmedArgument, flagArgumentPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return defaultWorkingDirectoryLabelConstant
}

func (formatter CommandMessageFormatter) argumentFromEnd(arguments []string, offsetFromEnd int) string {
	argumentIndex := len(arguments) - offsetFromEnd
	if argumentIndex < 0 || argumentIndex >= len(arguments) {
		return defaultWorkingDirectoryLabelConstant
	}
	return strings.TrimSpace(arguments[argumentIndex])
}
