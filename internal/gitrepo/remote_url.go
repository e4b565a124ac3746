package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	httpsProtocolPrefixConstant         = "https://"
	gitUserPrefixConstant               = "git@"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	directoryNameSeparatorConstant      = "_"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid repository reference"
	missingOwnerMessageConstant         = "missing owner segment"
	missingRepositoryMessageConstant    = "missing repository name segment"
	requiredValueMessageConstant        = "value required"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = "ssh"
	RemoteProtocolHTTPS RemoteProtocol = "https"
)

// RemoteURL represents a structured repository reference.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// DirectoryName derives the local mirror directory name for the reference.
func (remote RemoteURL) DirectoryName() string {
	return remote.Owner + directoryNameSeparatorConstant + remote.Repository
}

// RemoteURLParseError indicates a repository reference could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRemoteURL converts a textual repository reference into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant) {
		return parseSSHRemote(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	}
	if strings.HasPrefix(trimmedRemote, gitUserPrefixConstant) {
		return parseSSHRemote(trimmedRemote)
	}
	if strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant) {
		return parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

func parseSSHRemote(remote string) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	hostAndPath := remote[userSplitIndex+1:]
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	var host string
	var path string
	if pathSplitIndex == -1 {
		slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
		if slashIndex == -1 {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
		}
		host = hostAndPath[:slashIndex]
		path = hostAndPath[slashIndex+1:]
	} else {
		host = hostAndPath[:pathSplitIndex]
		path = hostAndPath[pathSplitIndex+1:]
	}

	owner, repository, parseError := splitOwnerAndRepository(path)
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPSRemote(remote string) (RemoteURL, error) {
	pathComponents := strings.Split(remote, pathSeparatorConstant)
	if len(pathComponents) < 3 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	host := pathComponents[0]
	owner, repository, parseError := splitOwnerAndRepository(strings.Join(pathComponents[1:], pathSeparatorConstant))
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(path string) (string, string, error) {
	segments := strings.Split(path, pathSeparatorConstant)
	if len(segments) != 2 {
		return "", "", RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}

	owner := strings.TrimSpace(segments[0])
	if len(owner) == 0 {
		return "", "", RemoteURLParseError{Input: path, Message: missingOwnerMessageConstant}
	}

	repository := strings.TrimSpace(strings.TrimSuffix(segments[1], gitSuffixConstant))
	if len(repository) == 0 {
		return "", "", RemoteURLParseError{Input: path, Message: missingRepositoryMessageConstant}
	}

	return owner, repository, nil
}

// FormatRemoteURL creates a textual clone URL from a structured representation.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Owner)) == 0 {
		return "", RemoteURLParseError{Input: remote.Owner, Message: missingOwnerMessageConstant}
	}
	if len(strings.TrimSpace(remote.Repository)) == 0 {
		return "", RemoteURLParseError{Input: remote.Repository, Message: missingRepositoryMessageConstant}
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf("%s%s%s%s%s%s", gitUserPrefixConstant, remote.Host, sshPathDelimiterConstant, remote.Owner, pathSeparatorConstant, remote.Repository+gitSuffixConstant), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf("%s%s%s%s%s%s%s", httpsProtocolPrefixConstant, remote.Host, pathSeparatorConstant, remote.Owner, pathSeparatorConstant, remote.Repository, gitSuffixConstant), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
