package sync

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/firefly-engineering/skill-quiver/internal/system"
	"github.com/firefly-engineering/skill-quiver/internal/testutil"
)

func upstreamV1() map[string]string {
	return map[string]string{
		"skills/code-reviewer/SKILL.md":        "---\nname: code-reviewer\n---\nv1\n",
		"skills/code-reviewer/checks/style.md": "style v1\n",
		"skills/code-reviewer/logo.bin":        "\x00\x01",
		"skills/readme-writer/SKILL.md":        "---\nname: readme-writer\n---\nv1\n",
	}
}

func TestDiff_NotYetFetched(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	gh.SetRepo("org", "ai-skills", shaV1, upstreamV1())
	p := testutil.NewProject(t)
	p.WriteManifest(apiManifest)

	var out bytes.Buffer
	changed, err := newAPIEngine(t, gh, system.NewMockExecutor()).Diff(context.Background(), p.Manifest(), DiffOptions{}, &out)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if !changed {
		t.Error("unfetched skills should count as changes")
	}
	if want := "code-reviewer: not yet fetched\nreadme-writer: not yet fetched\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if gh.TarballRequests() != 0 {
		t.Error("nothing to compare, no tarball expected")
	}
}

func TestDiff_UpToDate(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	gh.SetRepo("org", "ai-skills", shaV1, upstreamV1())
	p := testutil.NewProject(t)
	p.WriteManifest(apiManifest)
	m := p.Manifest()
	engine := newAPIEngine(t, gh, system.NewMockExecutor())

	if _, err := engine.Sync(context.Background(), m, Options{}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	changed, err := engine.Diff(context.Background(), m, DiffOptions{}, &out)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if changed || out.Len() != 0 {
		t.Errorf("changed = %v, output = %q", changed, out.String())
	}
	if gh.TarballRequests() != 1 {
		t.Errorf("current skills should be skipped without --latest")
	}

	changed, err = engine.Diff(context.Background(), m, DiffOptions{Latest: true}, &out)
	if err != nil {
		t.Fatalf("Diff --latest error: %v", err)
	}
	if changed || out.Len() != 0 {
		t.Errorf("identical content should not differ: %q", out.String())
	}
	if gh.TarballRequests() != 2 {
		t.Errorf("--latest should fetch upstream, requests = %d", gh.TarballRequests())
	}
}

func TestDiff_UpstreamChanges(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	gh.SetRepo("org", "ai-skills", shaV1, upstreamV1())
	p := testutil.NewProject(t)
	p.WriteManifest(apiManifest)
	m := p.Manifest()
	engine := newAPIEngine(t, gh, system.NewMockExecutor())

	if _, err := engine.Sync(context.Background(), m, Options{}); err != nil {
		t.Fatal(err)
	}

	gh.SetRepo("org", "ai-skills", shaV2, map[string]string{
		"skills/code-reviewer/SKILL.md": "---\nname: code-reviewer\n---\nv2\n",
		"skills/code-reviewer/new.md":   "new\n",
		"skills/code-reviewer/logo.bin": "\x00\x02",
	})

	before := testutil.Snapshot(t, p.SkillsDir())
	var out bytes.Buffer
	changed, err := engine.Diff(context.Background(), m, DiffOptions{}, &out)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if !changed {
		t.Error("expected changes")
	}

	got := out.String()
	for _, want := range []string{
		"--- local/code-reviewer/SKILL.md\n",
		"+++ upstream/code-reviewer/SKILL.md\n",
		"-v1\n+v2\n",
		"code-reviewer/checks/style.md: removed upstream\n",
		"code-reviewer/new.md: added upstream\n",
		"code-reviewer/logo.bin: binary files differ\n",
		"readme-writer: not found upstream\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, ".source.toml") {
		t.Errorf("hidden files should be ignored:\n%s", got)
	}

	if after := testutil.Snapshot(t, p.SkillsDir()); !reflect.DeepEqual(before, after) {
		t.Error("diff mutated the skills directory")
	}
}

func TestDiff_NonGitHubSource(t *testing.T) {
	gh := testutil.NewFakeGitHub(t)
	exec := system.NewMockExecutor()
	p := testutil.NewProject(t)
	p.WriteManifest(`
[[source]]
name = "internal"
repo = "https://git.example.com/team/tools.git"
skills = ["deploy-helper"]
`)

	var out bytes.Buffer
	changed, err := newAPIEngine(t, gh, exec).Diff(context.Background(), p.Manifest(), DiffOptions{}, &out)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if changed {
		t.Error("unsupported sources should not count as changes")
	}
	if got := out.String(); got != "internal: diff not supported for non-GitHub sources\n" {
		t.Errorf("output = %q", got)
	}
	if len(exec.Commands) != 0 || gh.CommitRequests() != 0 {
		t.Error("unsupported sources should not be contacted")
	}
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte("plain text\n"), false},
		{[]byte("utf-8 ✓\n"), false},
		{[]byte{0x00, 0x01}, true},
		{[]byte{0xff, 0xfe, 0x41}, true},
	}
	for _, tt := range tests {
		if got := isBinary(tt.data); got != tt.want {
			t.Errorf("isBinary(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}
