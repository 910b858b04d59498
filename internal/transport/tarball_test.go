package transport

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/github"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
	"github.com/firefly-engineering/skill-quiver/internal/testutil"
)

type stubDownloader struct {
	data  []byte
	err   error
	calls []string
}

func (s *stubDownloader) DownloadTarball(ctx context.Context, owner, repo, revision string, w io.Writer) (int64, error) {
	s.calls = append(s.calls, owner+"/"+repo+"@"+revision)
	if s.err != nil {
		return 0, s.err
	}
	n, err := w.Write(s.data)
	return int64(n), err
}

func githubSource(path string) *manifest.Source {
	return &manifest.Source{
		Name:   "community",
		Repo:   "https://github.com/org/ai-skills",
		Path:   path,
		Ref:    "main",
		Skills: []string{"x", "y"},
	}
}

// isolateTemp points os.TempDir at a fresh directory and returns it.
func isolateTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	return dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected %s to be empty, found %v", dir, names)
	}
}

func TestTarball_Fetch(t *testing.T) {
	tmp := isolateTemp(t)
	dest := filepath.Join(t.TempDir(), "skills")

	stub := &stubDownloader{data: testutil.MustTarball(t, testutil.TarballOptions{
		TopDir:  "org-ai-skills-abc1234",
		Comment: "abc1234",
	}, map[string]string{
		"README.md":               "readme",
		"skills/x/SKILL.md":       "x skill",
		"skills/x/refs/guide.md":  "guide",
		"skills/x-extra/SKILL.md": "not requested",
		"skills/y/SKILL.md":       "y skill",
		"skills/other/SKILL.md":   "not requested",
		"elsewhere/x/SKILL.md":    "wrong subpath",
	})}

	tr := NewTarball(stub)
	dirs, err := tr.Fetch(context.Background(), githubSource("skills"), []string{"x", "y", "missing"}, "abc1234", dest)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	wantDirs := []string{filepath.Join(dest, "x"), filepath.Join(dest, "y")}
	if !reflect.DeepEqual(dirs, wantDirs) {
		t.Errorf("dirs = %v, want %v", dirs, wantDirs)
	}

	wantFiles := []string{"x/SKILL.md", "x/refs/guide.md", "y/SKILL.md"}
	if got := testutil.Files(t, dest); !reflect.DeepEqual(got, wantFiles) {
		t.Errorf("files = %v, want %v", got, wantFiles)
	}

	data, err := os.ReadFile(filepath.Join(dest, "x", "refs", "guide.md"))
	if err != nil || string(data) != "guide" {
		t.Errorf("guide.md = %q, %v", data, err)
	}

	if _, err := os.Stat(filepath.Join(dest, "missing")); !os.IsNotExist(err) {
		t.Error("skill without entries should not get a directory")
	}
	if !reflect.DeepEqual(stub.calls, []string{"org/ai-skills@abc1234"}) {
		t.Errorf("download calls = %v", stub.calls)
	}
	assertEmptyDir(t, tmp)
}

func TestTarball_FetchRootPath(t *testing.T) {
	for _, path := range []string{".", "", "/"} {
		t.Run(fmt.Sprintf("path %q", path), func(t *testing.T) {
			dest := t.TempDir()
			stub := &stubDownloader{data: testutil.MustTarball(t, testutil.TarballOptions{TopDir: "top"}, map[string]string{
				"x/SKILL.md": "root skill",
			})}

			dirs, err := NewTarball(stub).Fetch(context.Background(), githubSource(path), []string{"x"}, "r1", dest)
			if err != nil {
				t.Fatalf("Fetch error: %v", err)
			}
			if len(dirs) != 1 {
				t.Fatalf("dirs = %v, want one", dirs)
			}
			if got := testutil.Files(t, dest); !reflect.DeepEqual(got, []string{"x/SKILL.md"}) {
				t.Errorf("files = %v", got)
			}
		})
	}
}

func TestTarball_SkipsSymlinks(t *testing.T) {
	dest := t.TempDir()
	stub := &stubDownloader{data: testutil.MustTarball(t, testutil.TarballOptions{
		TopDir:   "top",
		Symlinks: map[string]string{"x/passwd": "/etc/passwd"},
	}, map[string]string{"x/SKILL.md": "skill"})}

	if _, err := NewTarball(stub).Fetch(context.Background(), githubSource("."), []string{"x"}, "r1", dest); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(dest, "x", "passwd")); !os.IsNotExist(err) {
		t.Error("symlink entry should not be materialized")
	}
}

func TestTarball_Errors(t *testing.T) {
	tests := []struct {
		name        string
		stub        *stubDownloader
		src         *manifest.Source
		errContains string
	}{
		{
			name:        "download failure",
			stub:        &stubDownloader{err: fmt.Errorf("connection refused")},
			src:         githubSource("skills"),
			errContains: "failed to download tarball",
		},
		{
			name:        "empty archive",
			stub:        &stubDownloader{data: testutil.EmptyTarball(t)},
			src:         githubSource("skills"),
			errContains: "empty tarball",
		},
		{
			name:        "not gzip",
			stub:        &stubDownloader{data: []byte("<html>not a tarball</html>")},
			src:         githubSource("skills"),
			errContains: "failed to extract tarball",
		},
		{
			name: "bad repo url",
			stub: &stubDownloader{},
			src: &manifest.Source{
				Name: "community", Repo: "https://github.com/org", Path: ".", Ref: "main", Skills: []string{"x"},
			},
			errContains: "invalid GitHub repository",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := isolateTemp(t)

			_, err := NewTarball(tt.stub).Fetch(context.Background(), tt.src, []string{"x"}, "r1", t.TempDir())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.IsKind(err, errors.KindTransport) {
				t.Errorf("error kind is not transport: %v", err)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %v", tt.errContains, err)
			}
			if !strings.HasPrefix(err.Error(), "community: ") {
				t.Errorf("error should name the source, got %v", err)
			}
			assertEmptyDir(t, tmp)
		})
	}
}

func TestTarball_FetchFromAPI(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	gh.SetRepo("org", "ai-skills", "4f2a9c1d3e", map[string]string{
		"skills/x/SKILL.md": "from api",
	})
	client := github.NewClient(github.WithBaseURL(gh.URL()))
	dest := t.TempDir()

	dirs, err := NewTarball(client).Fetch(context.Background(), githubSource("skills"), []string{"x"}, "4f2a9c1d3e", dest)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != filepath.Join(dest, "x") {
		t.Errorf("dirs = %v", dirs)
	}
	if gh.TarballRequests() != 1 {
		t.Errorf("tarball requests = %d, want 1", gh.TarballRequests())
	}

	if _, err := NewTarball(client).Fetch(context.Background(), githubSource("skills"), []string{"x"}, "unknown", dest); err == nil {
		t.Error("expected error for unknown revision")
	}
}

func TestWriteEntry_StaysInsideSkillDir(t *testing.T) {
	root := t.TempDir()
	skillDir := filepath.Join(root, "skills", "x")
	content := "escaped?"
	hdr := &tar.Header{Name: "top/x/../../../evil.md", Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(content))}

	if err := writeEntry(skillDir, "../../../evil.md", hdr, bytes.NewReader([]byte(content))); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "evil.md")); !os.IsNotExist(err) {
		t.Error("entry escaped the skill directory")
	}
	if _, err := os.Stat(filepath.Join(skillDir, "evil.md")); err != nil {
		t.Errorf("entry should be clamped inside the skill directory: %v", err)
	}
}

func TestFileMode(t *testing.T) {
	if got := fileMode(0700); got != 0755 {
		t.Errorf("fileMode(0700) = %o, want 755", got)
	}
	if got := fileMode(0600); got != 0644 {
		t.Errorf("fileMode(0600) = %o, want 644", got)
	}
}
