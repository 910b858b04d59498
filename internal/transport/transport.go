// Package transport populates skill directories from an upstream source at a
// given revision.
//
// Two strategies exist. GitHub-hosted sources are fetched as a repository
// tarball through the REST API; every other host is fetched with a shallow,
// blob-filtered git sparse checkout. The strategy is chosen once per source.
package transport

import (
	"context"
	"io"
	"time"

	"github.com/firefly-engineering/skill-quiver/internal/github"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
	"github.com/firefly-engineering/skill-quiver/internal/system"
)

// Transport populates dest/<skill>/ for each requested skill.
type Transport interface {
	// Name identifies the strategy in logs.
	Name() string

	// Fetch materializes skills of src at revision under dest and returns
	// the skill directories it populated, in request order. Skills with no
	// files upstream are omitted.
	Fetch(ctx context.Context, src *manifest.Source, skills []string, revision, dest string) ([]string, error)
}

// TarballDownloader streams a repository tarball.
type TarballDownloader interface {
	DownloadTarball(ctx context.Context, owner, repo, revision string, w io.Writer) (int64, error)
}

// Options configures the sparse-checkout strategy.
type Options struct {
	GitBinary  string
	GitTimeout time.Duration
}

// Select returns the transport serving src.
func Select(src *manifest.Source, client TarballDownloader, exec system.CommandExecutor, opts Options) Transport {
	if github.IsGitHubURL(src.Repo) {
		return NewTarball(client)
	}
	return NewSparse(exec, opts.GitBinary, opts.GitTimeout)
}
