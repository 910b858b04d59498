package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

func TestValidManifest(t *testing.T) {
	m, err := ValidManifest("/project")
	if err != nil {
		t.Fatalf("ValidManifest() error: %v", err)
	}

	if len(m.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(m.Sources))
	}
	if m.Sources[0].Name != "community-skills" {
		t.Errorf("Sources[0].Name = %q, want community-skills", m.Sources[0].Name)
	}
	if m.Sources[1].Ref != manifest.DefaultRef {
		t.Errorf("Sources[1].Ref = %q, want default", m.Sources[1].Ref)
	}
	if m.Root != "/project" {
		t.Errorf("Root = %q, want /project", m.Root)
	}
}

func TestInvalidManifest(t *testing.T) {
	data, err := InvalidManifest()
	if err != nil {
		t.Fatalf("InvalidManifest() error: %v", err)
	}
	if _, err := manifest.ParseBytes(data, "/project"); err == nil {
		t.Error("invalid manifest fixture should fail to parse")
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("nonexistent.toml")
	if err == nil {
		t.Error("LoadFixture should error for nonexistent file")
	}
}

func readTarball(t *testing.T, data []byte) []*tar.Header {
	t.Helper()

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	tr := tar.NewReader(gz)

	var headers []*tar.Header
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar: %v", err)
		}
		headers = append(headers, hdr)
	}
	return headers
}

func TestBuildTarball(t *testing.T) {
	data := MustTarball(t, TarballOptions{TopDir: "org-repo-abc1234", Comment: "abc1234"}, map[string]string{
		"skills/x/SKILL.md": "hello",
	})

	headers := readTarball(t, data)
	want := []struct {
		name     string
		typeflag byte
	}{
		{"pax_global_header", tar.TypeXGlobalHeader},
		{"org-repo-abc1234/", tar.TypeDir},
		{"org-repo-abc1234/skills/", tar.TypeDir},
		{"org-repo-abc1234/skills/x/", tar.TypeDir},
		{"org-repo-abc1234/skills/x/SKILL.md", tar.TypeReg},
	}

	if len(headers) != len(want) {
		t.Fatalf("got %d entries, want %d", len(headers), len(want))
	}
	for i, w := range want {
		if headers[i].Name != w.name || headers[i].Typeflag != w.typeflag {
			t.Errorf("entry %d = %q (%c), want %q (%c)", i, headers[i].Name, headers[i].Typeflag, w.name, w.typeflag)
		}
	}
}

func TestEmptyTarball(t *testing.T) {
	if headers := readTarball(t, EmptyTarball(t)); len(headers) != 0 {
		t.Errorf("got %d entries, want 0", len(headers))
	}
}

func TestFakeGitHub(t *testing.T) {
	gh := NewFakeGitHub(t)
	gh.SetRepo("org", "repo", "abc123", map[string]string{"x/SKILL.md": "hi"})

	resp, err := http.Get(gh.URL() + "/repos/org/repo/commits/main")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["sha"] != "abc123" {
		t.Errorf("sha = %q, want abc123", body["sha"])
	}

	resp, err = http.Get(gh.URL() + "/repos/org/repo/tarball/abc123")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tarball status = %d", resp.StatusCode)
	}
	if headers := readTarball(t, data); len(headers) == 0 {
		t.Error("tarball should not be empty")
	}

	resp, err = http.Get(gh.URL() + "/repos/org/repo/tarball/other")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown revision status = %d, want 404", resp.StatusCode)
	}

	if gh.CommitRequests() != 1 || gh.TarballRequests() != 2 {
		t.Errorf("requests = %d commits, %d tarballs; want 1, 2", gh.CommitRequests(), gh.TarballRequests())
	}

	gh.SetCommitStatus(http.StatusInternalServerError)
	resp, err = http.Get(gh.URL() + "/repos/org/repo/commits/main")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("forced status = %d, want 500", resp.StatusCode)
	}
}

func TestProject(t *testing.T) {
	p := NewProject(t)
	p.WriteFile("skills/x/SKILL.md", "content")

	if !p.Exists("skills/x/SKILL.md") {
		t.Error("written file should exist")
	}
	if got := p.ReadFile("skills/x/SKILL.md"); got != "content" {
		t.Errorf("ReadFile = %q, want content", got)
	}
	if files := Files(t, p.SkillsDir()); len(files) != 1 || files[0] != "x/SKILL.md" {
		t.Errorf("Files = %v, want [x/SKILL.md]", files)
	}

	before := Snapshot(t, p.SkillsDir())
	if err := os.WriteFile(filepath.Join(p.SkillsDir(), "x", "SKILL.md"), []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}
	after := Snapshot(t, p.SkillsDir())
	if before["x/SKILL.md"] == after["x/SKILL.md"] {
		t.Error("snapshot should change when content changes")
	}

	if snap := Snapshot(t, filepath.Join(p.Root, "missing")); len(snap) != 0 {
		t.Errorf("missing dir snapshot = %v, want empty", snap)
	}
}
