package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/license"
	"github.com/firefly-engineering/skill-quiver/internal/logging"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
	"github.com/firefly-engineering/skill-quiver/internal/provenance"
	"github.com/firefly-engineering/skill-quiver/internal/transport"
)

// shortRevisionLength is how many characters of a revision are reported.
const shortRevisionLength = 8

// Selector returns the transport used for a source.
type Selector func(src *manifest.Source) transport.Transport

// Options controls a sync pass.
type Options struct {
	// DryRun reports what would change without touching the filesystem.
	DryRun bool
	// Skill restricts the pass to the single named skill.
	Skill string
}

// Outcome is what a pass did for one source.
type Outcome int

const (
	// UpToDate means every skill already matched the resolved revision.
	UpToDate Outcome = iota
	// Pending means stale skills were found during a dry run.
	Pending
	// Updated means stale skills were deleted and fetched again.
	Updated
)

// SourceResult reports the pass over one source.
type SourceResult struct {
	Source      string
	Transport   string
	OldRevision string
	Revision    string
	Outcome     Outcome
	// Stale lists the skills that did not match Revision.
	Stale []string
	// Fetched lists the skills the transport populated.
	Fetched []string
	// Missing lists stale skills the transport found no files for.
	Missing []string
}

// Summary returns the one-line report for the source.
func (r SourceResult) Summary() string {
	switch r.Outcome {
	case UpToDate:
		return fmt.Sprintf("%s: up to date (%s)", r.Source, ShortRevision(r.Revision))
	case Pending:
		return fmt.Sprintf("%s: %s -> %s (%d skills)", r.Source, ShortRevision(r.OldRevision), ShortRevision(r.Revision), len(r.Stale))
	default:
		return fmt.Sprintf("%s: %s -> %s (fetched %d of %d skills)", r.Source,
			ShortRevision(r.OldRevision), ShortRevision(r.Revision), len(r.Fetched), len(r.Stale))
	}
}

// Result reports a whole pass.
type Result struct {
	DryRun  bool
	Sources []SourceResult
}

// Changed reports whether any source was stale.
func (r *Result) Changed() bool {
	for _, s := range r.Sources {
		if s.Outcome != UpToDate {
			return true
		}
	}
	return false
}

// ShortRevision abbreviates a revision for display. An empty revision is
// reported as "none".
func ShortRevision(rev string) string {
	if rev == "" {
		return "none"
	}
	if len(rev) > shortRevisionLength {
		return rev[:shortRevisionLength]
	}
	return rev
}

// Engine drives reconciliation passes.
type Engine struct {
	resolver Resolver
	selector Selector
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used for provenance timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine.
func NewEngine(resolver Resolver, selector Selector, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver: resolver,
		selector: selector,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync reconciles m. For each source, only the stale skills are deleted and
// handed to the transport; current skills are not fetched again, so their
// content and provenance stay as they were. On error the returned result
// holds the sources processed before the failure.
func (e *Engine) Sync(ctx context.Context, m *manifest.Manifest, opts Options) (*Result, error) {
	result := &Result{DryRun: opts.DryRun}

	sources, err := selectSources(m, opts.Skill)
	if err != nil {
		return result, err
	}

	for _, sel := range sources {
		sr, err := e.syncSource(ctx, m, sel.source, sel.skills, opts.DryRun)
		if err != nil {
			return result, err
		}
		result.Sources = append(result.Sources, *sr)
	}

	if opts.DryRun {
		return result, nil
	}

	if err := license.Regenerate(m); err != nil {
		return result, err
	}
	return result, nil
}

type selection struct {
	source *manifest.Source
	skills []string
}

func selectSources(m *manifest.Manifest, skill string) ([]selection, error) {
	if skill == "" {
		out := make([]selection, 0, len(m.Sources))
		for i := range m.Sources {
			out = append(out, selection{source: &m.Sources[i], skills: m.Sources[i].Skills})
		}
		return out, nil
	}

	src, ok := m.SourceForSkill(skill)
	if !ok {
		return nil, errors.New(errors.ExitGeneralError, fmt.Sprintf("skill '%s' is not declared in the manifest", skill))
	}
	return []selection{{source: src, skills: []string{skill}}}, nil
}

func (e *Engine) syncSource(ctx context.Context, m *manifest.Manifest, src *manifest.Source, skills []string, dryRun bool) (*SourceResult, error) {
	log := logging.With("source", src.Name)
	skillsDir := m.SkillsDir()

	log.Debug("resolving revision", "repo", src.Repo, "ref", src.Ref)
	revision, err := e.resolver.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	statuses, err := Classify(skillsDir, skills, revision)
	if err != nil {
		return nil, err
	}
	stale := staleOf(statuses)
	log.Debug("classified skills", "revision", revision, "total", len(statuses), "stale", len(stale))

	sr := &SourceResult{Source: src.Name, Revision: revision, Outcome: UpToDate}
	for _, s := range stale {
		sr.Stale = append(sr.Stale, s.Name)
	}
	if len(stale) == 0 {
		return sr, nil
	}
	sr.OldRevision = previousRevision(stale)

	if dryRun {
		sr.Outcome = Pending
		return sr, nil
	}

	tr := e.selector(src)
	sr.Transport = tr.Name()
	sr.Outcome = Updated

	if err := os.MkdirAll(skillsDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ExitGeneralError, "cannot create skills directory", err)
	}

	for _, s := range stale {
		log.Debug("removing stale skill", "skill", s.Name, "dir", s.Dir)
		if err := os.RemoveAll(s.Dir); err != nil {
			return nil, errors.Wrap(errors.ExitGeneralError, fmt.Sprintf("cannot remove stale skill %s", s.Name), err)
		}
	}

	log.Debug("fetching skills", "transport", tr.Name(), "revision", revision, "skills", sr.Stale)
	dirs, err := tr.Fetch(ctx, src, sr.Stale, revision, skillsDir)
	if err != nil {
		if !errors.IsKind(err, errors.KindTransport) {
			err = errors.TransportError(src.Name, "fetch failed", err)
		}
		return nil, err
	}

	fetchedAt := e.now().UTC().Truncate(time.Second)
	fetched := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		rec := &provenance.Record{
			Repo:      src.Repo,
			Path:      src.Path,
			Ref:       src.Ref,
			Revision:  revision,
			License:   src.License,
			FetchedAt: fetchedAt,
		}
		if err := provenance.Write(dir, rec); err != nil {
			return nil, errors.Wrap(errors.ExitGeneralError, fmt.Sprintf("cannot record provenance for %s", filepath.Base(dir)), err)
		}
		log.Debug("wrote provenance", "skill", filepath.Base(dir), "revision", revision)
		fetched[filepath.Base(dir)] = true
	}

	for _, name := range sr.Stale {
		if fetched[name] {
			sr.Fetched = append(sr.Fetched, name)
		} else {
			sr.Missing = append(sr.Missing, name)
		}
	}
	return sr, nil
}

// previousRevision returns the first recorded revision among stale skills.
// Skills never fetched carry none.
func previousRevision(stale []SkillStatus) string {
	for _, s := range stale {
		if s.Provenance != nil {
			return s.Provenance.Revision
		}
	}
	return ""
}
