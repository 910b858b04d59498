package transport

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/dustin/go-humanize"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/github"
	"github.com/firefly-engineering/skill-quiver/internal/logging"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

var errEmptyArchive = fmt.Errorf("archive has no entries")

// Tarball fetches skills from a GitHub repository tarball.
type Tarball struct {
	client TarballDownloader
}

// NewTarball creates a tarball transport.
func NewTarball(client TarballDownloader) *Tarball {
	return &Tarball{client: client}
}

// Name implements Transport.
func (t *Tarball) Name() string {
	return "tarball"
}

// Fetch implements Transport. The archive is spooled to a temporary file that
// is removed before Fetch returns.
func (t *Tarball) Fetch(ctx context.Context, src *manifest.Source, skills []string, revision, dest string) ([]string, error) {
	owner, repo, err := github.ParseRepo(src.Repo)
	if err != nil {
		return nil, errors.TransportError(src.Name, "invalid GitHub repository", err)
	}

	tmp, err := os.CreateTemp("", "quiv-*.tar.gz")
	if err != nil {
		return nil, errors.TransportError(src.Name, "cannot create temporary file", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	n, err := t.client.DownloadTarball(ctx, owner, repo, revision, tmp)
	if err != nil {
		return nil, errors.TransportError(src.Name, "failed to download tarball", err)
	}
	logging.Debug("downloaded tarball", "source", src.Name, "revision", revision, "size", humanize.Bytes(uint64(n)))

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, errors.TransportError(src.Name, "cannot rewind tarball", err)
	}

	dirs, err := extractSkills(tmp, src.SubPath(), skills, dest)
	if err == errEmptyArchive {
		return nil, errors.TransportError(src.Name, "empty tarball", nil)
	}
	if err != nil {
		return nil, errors.TransportError(src.Name, "failed to extract tarball", err)
	}
	return dirs, nil
}

// extractSkills copies the regular files under <top>/<subPath>/<skill>/ into
// dest/<skill>/. <top> is the first path segment of the first entry.
func extractSkills(r io.Reader, subPath string, skills []string, dest string) ([]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	var prefixes map[string]string
	populated := make(map[string]bool, len(skills))

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		if prefixes == nil {
			topDir, _, _ := strings.Cut(hdr.Name, "/")
			prefixes = skillPrefixes(topDir, subPath, skills)
		}

		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		for skill, prefix := range prefixes {
			if !strings.HasPrefix(hdr.Name, prefix) {
				continue
			}
			rel := strings.TrimPrefix(hdr.Name, prefix)
			if rel == "" {
				break
			}
			skillDir := filepath.Join(dest, skill)
			if err := writeEntry(skillDir, rel, hdr, tr); err != nil {
				return nil, err
			}
			populated[skill] = true
			break
		}
	}

	if prefixes == nil {
		return nil, errEmptyArchive
	}

	dirs := make([]string, 0, len(populated))
	for _, skill := range skills {
		if populated[skill] {
			dirs = append(dirs, filepath.Join(dest, skill))
		}
	}
	return dirs, nil
}

func skillPrefixes(topDir, subPath string, skills []string) map[string]string {
	prefixes := make(map[string]string, len(skills))
	for _, skill := range skills {
		if subPath != "" {
			prefixes[skill] = topDir + "/" + subPath + "/" + skill + "/"
		} else {
			prefixes[skill] = topDir + "/" + skill + "/"
		}
	}
	return prefixes
}

func writeEntry(skillDir, rel string, hdr *tar.Header, r io.Reader) error {
	target, err := securejoin.SecureJoin(skillDir, rel)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", hdr.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode(hdr.FileInfo().Mode()))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return f.Close()
}

// fileMode keeps the executable bit of an entry and nothing else.
func fileMode(m os.FileMode) os.FileMode {
	if m&0111 != 0 {
		return 0755
	}
	return 0644
}
