package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"depchain/internal/errors"
)

// DefaultBranch is used when a repository reference names no branch.
const DefaultBranch = "main"

// Repo identifies a repository at a branch.
type Repo struct {
	Owner  string
	Name   string
	Branch string
}

func (r Repo) branch() string {
	if r.Branch == "" {
		return DefaultBranch
	}
	return r.Branch
}

// String renders owner/name@branch. It doubles as the listing cache key.
func (r Repo) String() string {
	return fmt.Sprintf("%s/%s@%s", r.Owner, r.Name, r.branch())
}

// ParseRepo parses "owner/repo" or "owner/repo@branch".
func ParseRepo(s string) (Repo, error) {
	ref := strings.TrimSpace(s)
	ref = strings.TrimPrefix(ref, "https://github.com/")
	ref = strings.TrimSuffix(ref, ".git")

	var repo Repo
	if name, branch, ok := strings.Cut(ref, "@"); ok {
		ref, repo.Branch = name, branch
		if branch == "" {
			return Repo{}, errors.Errorf(errors.InvalidRequest, "repository %q has an empty branch", s)
		}
	}

	owner, name, ok := strings.Cut(ref, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, errors.Errorf(errors.InvalidRequest, "repository %q must be owner/repo[@branch]", s)
	}
	repo.Owner, repo.Name = owner, name
	return repo, nil
}

// Repository binds a Client to one Repo so it can serve as both the file
// lister and the content source of an analysis.
type Repository struct {
	client *Client
	repo   Repo
}

// NewRepository creates a Repository.
func NewRepository(client *Client, repo Repo) *Repository {
	return &Repository{client: client, repo: repo}
}

// CacheKey is the listing cache key for the bound repository.
func (r *Repository) CacheKey() string { return "github:" + r.repo.String() }

// ListFiles lists the bound repository. An exhausted rate limit comes back
// as a LISTING_FAILED error whose fix points at the token.
func (r *Repository) ListFiles(ctx context.Context) ([]string, error) {
	files, err := r.client.ListFiles(ctx, r.repo)
	if err != nil {
		var se *StatusError
		if stderrors.As(err, &se) && se.IsRateLimited() {
			return nil, errors.New(errors.ListingFailed, "GitHub rate limit exceeded while listing "+r.repo.String(), err).
				WithFixes(rateLimitFixes(r.client.token != ""))
		}
		return nil, err
	}
	return files, nil
}

func rateLimitFixes(hasToken bool) []errors.FixAction {
	if hasToken {
		return []errors.FixAction{{
			Type:        errors.OpenDocs,
			Description: "The token's hourly quota is spent; wait for the reset or lower github.requestsPerSecond",
			URL:         "https://docs.github.com/rest/using-the-rest-api/rate-limits-for-the-rest-api",
		}}
	}
	return []errors.FixAction{{
		Type:        errors.SetEnv,
		Variable:    "GITHUB_TOKEN",
		Description: "Unauthenticated requests are limited to 60 per hour",
	}}
}

// FetchContent reads one file of the bound repository.
func (r *Repository) FetchContent(ctx context.Context, path string) (string, error) {
	return r.client.FetchContent(ctx, r.repo, path)
}
