package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"path"
	"sort"
	"strings"
	"testing"
	"time"
)

// TarballOptions controls how BuildTarball lays out an archive.
type TarballOptions struct {
	// TopDir is the synthetic root every entry is nested under.
	TopDir string
	// Comment, when set, is written as a leading pax global header the way
	// GitHub records the commit of a tarball.
	Comment string
	// Symlinks maps archive-relative link names to their targets.
	Symlinks map[string]string
}

// BuildTarball returns a gzipped tar archive holding files, keyed by path
// relative to TopDir. Directory entries are emitted for every parent.
func BuildTarball(opts TarballOptions, files map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	mtime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if opts.Comment != "" {
		if err := tw.WriteHeader(&tar.Header{
			Typeflag:   tar.TypeXGlobalHeader,
			Name:       "pax_global_header",
			PAXRecords: map[string]string{"comment": opts.Comment},
		}); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	dirs := map[string]bool{}
	var writeDir func(dir string) error
	writeDir = func(dir string) error {
		if dir == "." || dir == "" || dirs[dir] {
			return nil
		}
		if err := writeDir(path.Dir(dir)); err != nil {
			return err
		}
		dirs[dir] = true
		return tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeDir,
			Name:     joinTop(opts.TopDir, dir) + "/",
			Mode:     0755,
			ModTime:  mtime,
		})
	}

	if opts.TopDir != "" {
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeDir,
			Name:     opts.TopDir + "/",
			Mode:     0755,
			ModTime:  mtime,
		}); err != nil {
			return nil, err
		}
	}

	for _, name := range names {
		if err := writeDir(path.Dir(name)); err != nil {
			return nil, err
		}
		content := files[name]
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     joinTop(opts.TopDir, name),
			Mode:     0644,
			Size:     int64(len(content)),
			ModTime:  mtime,
		}); err != nil {
			return nil, err
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			return nil, err
		}
	}

	links := make([]string, 0, len(opts.Symlinks))
	for name := range opts.Symlinks {
		links = append(links, name)
	}
	sort.Strings(links)
	for _, name := range links {
		if err := writeDir(path.Dir(name)); err != nil {
			return nil, err
		}
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeSymlink,
			Name:     joinTop(opts.TopDir, name),
			Linkname: opts.Symlinks[name],
			Mode:     0777,
			ModTime:  mtime,
		}); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustTarball is BuildTarball failing the test on error.
func MustTarball(t testing.TB, opts TarballOptions, files map[string]string) []byte {
	t.Helper()

	data, err := BuildTarball(opts, files)
	if err != nil {
		t.Fatalf("Failed to build tarball: %v", err)
	}
	return data
}

// EmptyTarball returns a valid gzip stream holding a tar with no entries.
func EmptyTarball(t testing.TB) []byte {
	t.Helper()
	return MustTarball(t, TarballOptions{}, nil)
}

func joinTop(top, name string) string {
	name = strings.TrimPrefix(name, "/")
	if top == "" {
		return name
	}
	return top + "/" + name
}
