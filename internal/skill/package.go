package skill

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
)

// Archive describes a packaged skill.
type Archive struct {
	Path  string
	Files int
	Size  int64
}

// HumanSize returns the archive size in human units.
func (a *Archive) HumanSize() string {
	return humanize.Bytes(uint64(a.Size))
}

// Package validates skillDir and zips its non-hidden files into output.
// Entries are stored as <skill>/<relative path>.
func Package(skillDir, output string) (*Archive, error) {
	info, err := os.Stat(skillDir)
	if err != nil || !info.IsDir() {
		return nil, errors.PackageError(fmt.Sprintf("skill directory not found: %s", skillDir), nil)
	}

	name := filepath.Base(skillDir)
	if problems := ValidateSkill(skillDir); len(problems) > 0 {
		return nil, errors.PackageError(fmt.Sprintf("validation failed for '%s': %s", name, strings.Join(problems, "; ")), nil)
	}

	outAbs, err := filepath.Abs(output)
	if err != nil {
		return nil, errors.PackageError("invalid output path", err)
	}

	files, err := collectFiles(skillDir, outAbs)
	if err != nil {
		return nil, errors.PackageError("cannot list skill files", err)
	}

	if err := writeZip(outAbs, name, skillDir, files); err != nil {
		_ = os.Remove(outAbs)
		return nil, errors.PackageError("failed to create archive", err)
	}

	stat, err := os.Stat(outAbs)
	if err != nil {
		return nil, errors.PackageError("cannot stat archive", err)
	}
	return &Archive{Path: outAbs, Files: len(files), Size: stat.Size()}, nil
}

// collectFiles returns slash-separated relative paths of the regular files
// under dir, skipping hidden entries and exclude.
func collectFiles(dir, exclude string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && abs == exclude {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

func writeZip(output, name, dir string, files []string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	for _, rel := range files {
		if err := addFile(zw, filepath.Join(dir, filepath.FromSlash(rel)), name+"/"+rel); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func addFile(zw *zip.Writer, path, arcname string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = arcname
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
