// Package testutil provides test fixtures and utilities.
//
// # Fixtures
//
// TOML manifest fixtures are embedded using go:embed:
//
//	fixtures/valid_manifest.toml
//	fixtures/invalid_manifest.toml
//
// # Tarballs
//
// BuildTarball produces gzipped archives shaped like the GitHub tarball
// endpoint: an optional pax global header followed by entries nested under a
// single top-level directory.
//
//	data := testutil.MustTarball(t, testutil.TarballOptions{TopDir: "org-repo-abc1234"}, map[string]string{
//	    "skills/code-reviewer/SKILL.md": "---\nname: code-reviewer\n---\n",
//	})
//
// # Fake GitHub
//
// FakeGitHub serves /repos/{owner}/{repo}/commits/{ref} and
// /repos/{owner}/{repo}/tarball/{sha} from in-memory state and counts the
// requests it receives:
//
//	gh := testutil.NewFakeGitHub(t)
//	gh.SetRepo("org", "ai-skills", "r1", files)
//	client := github.NewClient(github.WithBaseURL(gh.URL()))
//
// # Projects
//
// Project wraps a temporary directory holding skills.toml and skills/.
// Snapshot captures a directory tree so tests can assert it was not mutated.
package testutil
