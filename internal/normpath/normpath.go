// Package normpath normalizes filesystem paths into an absolute, dot-free,
// UTF-8 canonical form, with a shorter display form relative to the
// current working directory when that form is actually shorter.
package normpath

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"
)

// ErrNotUTF8 is returned when a path (or the current working directory)
// cannot be represented as valid UTF-8.
var ErrNotUTF8 = fmt.Errorf("path is not valid UTF-8")

var (
	cwdOnce sync.Once
	cwd     *Path
	cwdErr  error
)

// CWD returns the process's current working directory, normalized once
// and memoised for the remainder of the process's lifetime.
func CWD() (*Path, error) {
	cwdOnce.Do(func() {
		dir, err := os.Getwd()
		if err != nil {
			cwdErr = fmt.Errorf("determine current working directory: %w", err)
			return
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			cwdErr = fmt.Errorf("resolve current working directory: %w", err)
			return
		}
		if !utf8.ValidString(abs) {
			cwdErr = ErrNotUTF8
			return
		}
		cwd = &Path{abs: filepath.Clean(abs)}
	})
	return cwd, cwdErr
}

// Path is a normalized, absolute, dot-free, UTF-8 path. It is immutable
// and comparable on its absolute form.
type Path struct {
	abs   string
	short string
	once  sync.Once
}

// Normalize resolves p to an absolute, dot-free path relative to base
// (typically a config-file directory when resolving a path found inside
// one); a nil base means the current working directory. An
// already-absolute p is cleaned but otherwise left alone.
func Normalize(p string, base *Path) (*Path, error) {
	if !utf8.ValidString(p) {
		return nil, ErrNotUTF8
	}
	abs := p
	if !filepath.IsAbs(abs) {
		if base == nil {
			var err error
			base, err = CWD()
			if err != nil {
				return nil, err
			}
		}
		abs = filepath.Join(base.abs, p)
	}
	abs = filepath.Clean(abs)
	if !utf8.ValidString(abs) {
		return nil, ErrNotUTF8
	}
	return &Path{abs: abs}, nil
}

// Abs returns the canonical absolute form.
func (p *Path) Abs() string {
	return p.abs
}

// Short returns the canonical relative form from CWD when it is strictly
// shorter than the absolute form, otherwise the absolute form.
func (p *Path) Short() string {
	p.once.Do(func() {
		p.short = p.abs
		dir, err := CWD()
		if err != nil {
			return
		}
		rel, err := filepath.Rel(dir.abs, p.abs)
		if err != nil {
			return
		}
		if len(rel) < len(p.abs) {
			p.short = rel
		}
	})
	return p.short
}

// String implements fmt.Stringer, returning the short display form.
func (p *Path) String() string {
	return p.Short()
}

// Equal reports whether two normalized paths refer to the same location.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.abs == other.abs
}

// Join normalizes child relative to p, p's absolute form being the base.
func (p *Path) Join(child string) (*Path, error) {
	return Normalize(child, p)
}

// Dir returns a Path for the directory containing p (useful when p refers
// to a file, such as a discovered rusk.toml).
func (p *Path) Dir() *Path {
	return &Path{abs: filepath.Dir(p.abs)}
}

// IsExistingDir reports whether p refers to an existing directory.
func (p *Path) IsExistingDir() bool {
	info, err := os.Stat(p.abs)
	return err == nil && info.IsDir()
}
