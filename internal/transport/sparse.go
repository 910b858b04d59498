package transport

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/logging"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
	"github.com/firefly-engineering/skill-quiver/internal/system"
)

// DefaultGitBinary is the executable used when none is configured.
const DefaultGitBinary = "git"

// Sparse fetches skills with a shallow sparse git clone.
type Sparse struct {
	exec    system.CommandExecutor
	binary  string
	timeout time.Duration
}

// NewSparse creates a sparse-checkout transport. A zero timeout leaves git
// bounded only by ctx.
func NewSparse(exec system.CommandExecutor, binary string, timeout time.Duration) *Sparse {
	if binary == "" {
		binary = DefaultGitBinary
	}
	return &Sparse{exec: exec, binary: binary, timeout: timeout}
}

// Name implements Transport.
func (s *Sparse) Name() string {
	return "sparse-checkout"
}

// Fetch implements Transport. The clone happens in a scratch directory that
// is removed before Fetch returns. Existing destination directories of
// fetched skills are replaced.
func (s *Sparse) Fetch(ctx context.Context, src *manifest.Source, skills []string, revision, dest string) ([]string, error) {
	if _, err := s.exec.LookPath(s.binary); err != nil {
		return nil, errors.TransportError(src.Name,
			"git is not installed. Required for non-GitHub sources. Install git or use GitHub-hosted sources", err)
	}

	scratch, err := os.MkdirTemp("", "quiv-sparse-*")
	if err != nil {
		return nil, errors.TransportError(src.Name, "cannot create scratch directory", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	repoDir := filepath.Join(scratch, "repo")
	out, err := s.exec.Execute(ctx, s.binary,
		"clone", "--depth", "1", "--filter=blob:none", "--sparse",
		"--branch", src.Ref, "--", src.Repo, repoDir)
	if err != nil {
		return nil, gitError(ctx, src, "clone", out, err)
	}

	paths := make([]string, 0, len(skills))
	for _, skill := range skills {
		paths = append(paths, src.SkillPath(skill))
	}
	args := append([]string{"sparse-checkout", "set"}, paths...)
	if out, err := s.exec.ExecuteInDir(ctx, repoDir, s.binary, args...); err != nil {
		return nil, gitError(ctx, src, "sparse-checkout", out, err)
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, errors.TransportError(src.Name, "cannot create destination", err)
	}

	var dirs []string
	for _, skill := range skills {
		from, err := securejoin.SecureJoin(repoDir, src.SkillPath(skill))
		if err != nil {
			return nil, errors.TransportError(src.Name, "invalid skill path", err)
		}
		if info, err := os.Stat(from); err != nil || !info.IsDir() {
			logging.Debug("skill not present in checkout", "source", src.Name, "skill", skill, "revision", revision)
			continue
		}

		to := filepath.Join(dest, skill)
		if err := os.RemoveAll(to); err != nil {
			return nil, errors.TransportError(src.Name, fmt.Sprintf("cannot replace %s", skill), err)
		}
		if err := copyTree(from, to); err != nil {
			return nil, errors.TransportError(src.Name, fmt.Sprintf("cannot copy %s", skill), err)
		}
		dirs = append(dirs, to)
	}
	return dirs, nil
}

func gitError(ctx context.Context, src *manifest.Source, step string, out []byte, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.TransportError(src.Name, fmt.Sprintf("git %s timed out", step), ctx.Err())
	}
	detail := strings.TrimSpace(string(out))
	if detail == "" {
		detail = err.Error()
	}
	return errors.TransportError(src.Name, fmt.Sprintf("git %s failed: %s", step, detail), err)
}

// copyTree copies the regular files and directories under from into to.
// Symlinks and other special files are skipped.
func copyTree(from, to string) error {
	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		target, err := securejoin.SecureJoin(to, rel)
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, fileMode(info.Mode()))
		default:
			logging.Debug("skipping special file", "path", path)
			return nil
		}
	})
}

func copyFile(from, to string, mode os.FileMode) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
