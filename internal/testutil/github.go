package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeRepo is the upstream state served for one owner/repo.
type FakeRepo struct {
	SHA   string
	Files map[string]string
}

// FakeGitHub is an httptest server implementing the commit and tarball
// endpoints of the GitHub REST API.
type FakeGitHub struct {
	Server *httptest.Server

	mu              sync.Mutex
	repos           map[string]*FakeRepo
	commitStatus    int
	tarballStatus   int
	commitRequests  int
	tarballRequests int
	lastAuth        string
}

// NewFakeGitHub starts a fake API server that is closed when the test ends.
func NewFakeGitHub(t testing.TB) *FakeGitHub {
	t.Helper()

	f := &FakeGitHub{repos: make(map[string]*FakeRepo)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake API.
func (f *FakeGitHub) URL() string {
	return f.Server.URL
}

// SetRepo sets the commit and files served for owner/repo. File paths are
// relative to the repository root.
func (f *FakeGitHub) SetRepo(owner, repo, sha string, files map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := make(map[string]string, len(files))
	for k, v := range files {
		copied[k] = v
	}
	f.repos[owner+"/"+repo] = &FakeRepo{SHA: sha, Files: copied}
}

// SetCommitStatus forces every commit lookup to fail with code. Zero clears.
func (f *FakeGitHub) SetCommitStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commitStatus = code
}

// SetTarballStatus forces every tarball download to fail with code. Zero
// clears.
func (f *FakeGitHub) SetTarballStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tarballStatus = code
}

// CommitRequests returns the number of commit lookups served.
func (f *FakeGitHub) CommitRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commitRequests
}

// TarballRequests returns the number of tarball downloads served.
func (f *FakeGitHub) TarballRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tarballRequests
}

// LastAuthorization returns the Authorization header of the latest request.
func (f *FakeGitHub) LastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

// /repos/{owner}/{repo}/{commits|tarball}/{ref...}
func (f *FakeGitHub) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastAuth = r.Header.Get("Authorization")

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 5)
	if len(parts) != 5 || parts[0] != "repos" || r.Method != http.MethodGet {
		writeAPIError(w, http.StatusNotFound, "Not Found")
		return
	}

	key := parts[1] + "/" + parts[2]
	repo, ok := f.repos[key]

	switch parts[3] {
	case "commits":
		f.commitRequests++
		if f.commitStatus != 0 {
			writeAPIError(w, f.commitStatus, "forced failure")
			return
		}
		if !ok {
			writeAPIError(w, http.StatusNotFound, "Not Found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"sha": repo.SHA})

	case "tarball":
		f.tarballRequests++
		if f.tarballStatus != 0 {
			writeAPIError(w, f.tarballStatus, "forced failure")
			return
		}
		if !ok || parts[4] != repo.SHA {
			writeAPIError(w, http.StatusNotFound, "Not Found")
			return
		}
		short := repo.SHA
		if len(short) > 7 {
			short = short[:7]
		}
		data, err := BuildTarball(TarballOptions{
			TopDir:  fmt.Sprintf("%s-%s-%s", parts[1], parts[2], short),
			Comment: repo.SHA,
		}, repo.Files)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/x-gzip")
		_, _ = w.Write(data)

	default:
		writeAPIError(w, http.StatusNotFound, "Not Found")
	}
}

func writeAPIError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
