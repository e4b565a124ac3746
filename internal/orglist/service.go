package orglist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v61/github"
	"go.uber.org/zap"
)

const (
	repositoryListPageSizeConstant        = 100
	repositoryListTypeConstant            = "all"
	listerNotConfiguredMessageConstant    = "repository lister not configured"
	organizationRequiredMessageConstant   = "organization name is required"
	organizationNotFoundMessageConstant   = "organization not found"
	authenticationFailedMessageConstant   = "authentication rejected by GitHub"
	rateLimitedMessageConstant            = "GitHub API rate limit exhausted"
	repositoryListFailureTemplateConstant = "unable to list repositories for organization %q: %w"
	incompleteRepositoryTemplateConstant  = "%s: repository entry missing clone URL"
	referenceLineTemplateConstant         = "%s\n"
	logMessageRepositoriesListedConstant  = "Listed organization repositories"
	logFieldOrganizationNameConstant      = "organization"
	logFieldRepositoryCountConstant       = "repository_count"
)

// Sentinel errors describing the terminal listing failures.
var (
	ErrListerNotConfigured  = errors.New(listerNotConfiguredMessageConstant)
	ErrOrganizationRequired = errors.New(organizationRequiredMessageConstant)
	ErrOrganizationNotFound = errors.New(organizationNotFoundMessageConstant)
	ErrAuthenticationFailed = errors.New(authenticationFailedMessageConstant)
	ErrRateLimited          = errors.New(rateLimitedMessageConstant)
)

// Repository describes one organization repository relevant to mirroring.
type Repository struct {
	Owner         string
	Name          string
	SSHURL        string
	CloneURL      string
	DefaultBranch string
}

// RepositoryLister exposes the GitHub repository listing call used by the service.
// The go-github repositories service satisfies it directly.
type RepositoryLister interface {
	ListByOrg(executionContext context.Context, organizationName string, options *github.RepositoryListByOrgOptions) ([]*github.Repository, *github.Response, error)
}

// Dependencies enumerates the collaborators required by the listing service.
type Dependencies struct {
	Logger           *zap.Logger
	RepositoryLister RepositoryLister
}

// Service retrieves the complete repository roster of an organization.
type Service struct {
	logger           *zap.Logger
	repositoryLister RepositoryLister
}

// NewService validates dependencies and constructs a listing service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RepositoryLister == nil {
		return nil, ErrListerNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, repositoryLister: dependencies.RepositoryLister}, nil
}

// ListOrganizationRepositories returns every repository of the organization or
// fails without partial results when any page cannot be retrieved.
func (service *Service) ListOrganizationRepositories(executionContext context.Context, organizationName string) ([]Repository, error) {
	trimmedOrganizationName := strings.TrimSpace(organizationName)
	if len(trimmedOrganizationName) == 0 {
		return nil, ErrOrganizationRequired
	}

	listOptions := &github.RepositoryListByOrgOptions{
		Type:        repositoryListTypeConstant,
		ListOptions: github.ListOptions{PerPage: repositoryListPageSizeConstant},
	}

	repositories := make([]Repository, 0)
	for {
		pageRepositories, pageResponse, listError := service.repositoryLister.ListByOrg(executionContext, trimmedOrganizationName, listOptions)
		if listError != nil {
			return nil, fmt.Errorf(repositoryListFailureTemplateConstant, trimmedOrganizationName, classifyListError(listError))
		}

		for _, pageRepository := range pageRepositories {
			repositories = append(repositories, convertRepository(trimmedOrganizationName, pageRepository))
		}

		if pageResponse == nil || pageResponse.NextPage == 0 {
			break
		}
		listOptions.Page = pageResponse.NextPage
	}

	service.logger.Info(logMessageRepositoriesListedConstant,
		zap.String(logFieldOrganizationNameConstant, trimmedOrganizationName),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
	)

	return repositories, nil
}

// WriteReferences renders one SSH clone reference per repository.
func WriteReferences(destination io.Writer, repositories []Repository) error {
	for _, repository := range repositories {
		referenceLine := repository.SSHURL
		if len(strings.TrimSpace(referenceLine)) == 0 {
			referenceLine = repository.CloneURL
		}
		if len(strings.TrimSpace(referenceLine)) == 0 {
			return fmt.Errorf(incompleteRepositoryTemplateConstant, repository.Name)
		}

		if _, writeError := fmt.Fprintf(destination, referenceLineTemplateConstant, referenceLine); writeError != nil {
			return writeError
		}
	}
	return nil
}

func convertRepository(organizationName string, repository *github.Repository) Repository {
	converted := Repository{Owner: organizationName}
	if repository == nil {
		return converted
	}

	converted.Name = repository.GetName()
	converted.SSHURL = repository.GetSSHURL()
	converted.CloneURL = repository.GetCloneURL()
	converted.DefaultBranch = repository.GetDefaultBranch()
	if repositoryOwner := repository.GetOwner(); repositoryOwner != nil && len(repositoryOwner.GetLogin()) > 0 {
		converted.Owner = repositoryOwner.GetLogin()
	}

	return converted
}

func classifyListError(listError error) error {
	var rateLimitError *github.RateLimitError
	if errors.As(listError, &rateLimitError) {
		return fmt.Errorf("%w: %s", ErrRateLimited, rateLimitError.Message)
	}

	var abuseRateLimitError *github.AbuseRateLimitError
	if errors.As(listError, &abuseRateLimitError) {
		return fmt.Errorf("%w: %s", ErrRateLimited, abuseRateLimitError.Message)
	}

	var errorResponse *github.ErrorResponse
	if errors.As(listError, &errorResponse) && errorResponse.Response != nil {
		switch errorResponse.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthenticationFailed, errorResponse.Message)
		case http.StatusNotFound:
			return ErrOrganizationNotFound
		}
	}

	return listError
}
