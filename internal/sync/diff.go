package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/logging"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

// DiffOptions controls a diff pass.
type DiffOptions struct {
	// Latest compares every fetched skill, even those whose provenance
	// matches the resolved revision.
	Latest bool
}

// Diff writes the differences between local skills and upstream to w and
// reports whether any were found. Upstream content is fetched into a scratch
// directory; the skills directory is never modified.
func (e *Engine) Diff(ctx context.Context, m *manifest.Manifest, opts DiffOptions, w io.Writer) (bool, error) {
	changed := false
	for i := range m.Sources {
		src := &m.Sources[i]
		srcChanged, err := e.diffSource(ctx, m, src, opts, w)
		if err != nil {
			return changed, err
		}
		changed = changed || srcChanged
	}
	return changed, nil
}

func (e *Engine) diffSource(ctx context.Context, m *manifest.Manifest, src *manifest.Source, opts DiffOptions, w io.Writer) (bool, error) {
	if !SupportsDiff(src) {
		fmt.Fprintf(w, "%s: diff not supported for non-GitHub sources\n", src.Name)
		return false, nil
	}

	revision, err := e.resolver.Resolve(ctx, src)
	if err != nil {
		return false, err
	}

	statuses, err := Classify(m.SkillsDir(), src.Skills, revision)
	if err != nil {
		return false, err
	}

	changed := false
	var compare []SkillStatus
	for _, s := range statuses {
		switch {
		case s.Provenance == nil:
			fmt.Fprintf(w, "%s: not yet fetched\n", s.Name)
			changed = true
		case s.State == Current && !opts.Latest:
		default:
			compare = append(compare, s)
		}
	}
	if len(compare) == 0 {
		return changed, nil
	}

	scratch, err := os.MkdirTemp("", "quiv-diff-*")
	if err != nil {
		return changed, errors.TransportError(src.Name, "cannot create scratch directory", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	names := make([]string, 0, len(compare))
	for _, s := range compare {
		names = append(names, s.Name)
	}

	tr := e.selector(src)
	logging.Debug("fetching upstream for diff", "source", src.Name, "transport", tr.Name(), "revision", revision)
	if _, err := tr.Fetch(ctx, src, names, revision, scratch); err != nil {
		return changed, err
	}

	for _, s := range compare {
		upstream := filepath.Join(scratch, s.Name)
		if info, err := os.Stat(upstream); err != nil || !info.IsDir() {
			fmt.Fprintf(w, "%s: not found upstream\n", s.Name)
			changed = true
			continue
		}
		differs, err := diffDirectories(w, s.Dir, upstream, s.Name)
		if err != nil {
			return changed, errors.Wrap(errors.ExitGeneralError, fmt.Sprintf("cannot compare %s", s.Name), err)
		}
		changed = changed || differs
	}
	return changed, nil
}

// listFiles maps slash-separated relative paths of the non-hidden regular
// files under root to their absolute paths.
func listFiles(root string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files[filepath.ToSlash(rel)] = path
		}
		return nil
	})
	return files, err
}

func diffDirectories(w io.Writer, local, upstream, skill string) (bool, error) {
	localFiles, err := listFiles(local)
	if err != nil {
		return false, err
	}
	upstreamFiles, err := listFiles(upstream)
	if err != nil {
		return false, err
	}

	seen := make(map[string]bool, len(localFiles)+len(upstreamFiles))
	var paths []string
	for rel := range localFiles {
		seen[rel] = true
		paths = append(paths, rel)
	}
	for rel := range upstreamFiles {
		if !seen[rel] {
			paths = append(paths, rel)
		}
	}
	sort.Strings(paths)

	changed := false
	for _, rel := range paths {
		localPath, inLocal := localFiles[rel]
		upstreamPath, inUpstream := upstreamFiles[rel]

		switch {
		case inLocal && !inUpstream:
			fmt.Fprintf(w, "%s/%s: removed upstream\n", skill, rel)
			changed = true
		case !inLocal && inUpstream:
			fmt.Fprintf(w, "%s/%s: added upstream\n", skill, rel)
			changed = true
		default:
			differs, err := diffFile(w, localPath, upstreamPath, skill+"/"+rel)
			if err != nil {
				return changed, err
			}
			changed = changed || differs
		}
	}
	return changed, nil
}

func diffFile(w io.Writer, localPath, upstreamPath, name string) (bool, error) {
	a, err := os.ReadFile(localPath)
	if err != nil {
		return false, err
	}
	b, err := os.ReadFile(upstreamPath)
	if err != nil {
		return false, err
	}
	if bytes.Equal(a, b) {
		return false, nil
	}

	if isBinary(a) || isBinary(b) {
		fmt.Fprintf(w, "%s: binary files differ\n", name)
		return true, nil
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "local/" + name,
		ToFile:   "upstream/" + name,
		Context:  3,
	})
	if err != nil {
		return false, err
	}
	fmt.Fprintln(w, text)
	return true, nil
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}
