package sync

import (
	"context"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/github"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

// Resolver maps a source to the revision its ref currently points to.
type Resolver interface {
	Resolve(ctx context.Context, src *manifest.Source) (string, error)
}

// CommitLookup returns the commit a GitHub ref points to.
type CommitLookup interface {
	CommitSHA(ctx context.Context, owner, repo, ref string) (string, error)
}

// APIResolver resolves GitHub sources through the commits API.
//
// Sources on any other host resolve to their literal ref. Two commits on a
// moving branch are therefore indistinguishable for those sources: they are
// only seen as stale when the ref itself changes in the manifest.
type APIResolver struct {
	client CommitLookup
}

// NewResolver creates a resolver backed by client.
func NewResolver(client CommitLookup) *APIResolver {
	return &APIResolver{client: client}
}

// Resolve implements Resolver.
func (r *APIResolver) Resolve(ctx context.Context, src *manifest.Source) (string, error) {
	if !github.IsGitHubURL(src.Repo) {
		return src.Ref, nil
	}

	owner, repo, err := github.ParseRepo(src.Repo)
	if err != nil {
		return "", errors.ResolutionError(src.Name, err)
	}

	sha, err := r.client.CommitSHA(ctx, owner, repo, src.Ref)
	if err != nil {
		return "", errors.ResolutionError(src.Name, err)
	}
	return sha, nil
}

// SupportsDiff reports whether src resolves to an immutable revision that
// can be fetched for comparison.
func SupportsDiff(src *manifest.Source) bool {
	return github.IsGitHubURL(src.Repo)
}
