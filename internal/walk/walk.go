// Package walk enumerates files under a root, honouring VCS-ignore
// rules: follow symlinks, yield paths whose basename matches a
// predicate. Every directory is descended whether or not a VCS root has
// been found; .gitignore rules apply only below a directory holding .git.
package walk

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// MatchFunc decides whether a regular file should be yielded.
type MatchFunc func(basename string) bool

// Walk enumerates root, calling fn for every regular file whose basename
// satisfies match. Directories are skipped once a `.gitignore` found
// along the way excludes them; `.git` marks a VCS root, below which
// ignore rules are honoured (above it, nothing has been discovered yet
// to honour). Symlinked directories are followed.
func Walk(root string, match MatchFunc, fn func(path string)) error {
	return walkDir(root, newIgnoreStack(), match, fn)
}

// ignoreStack accumulates compiled .gitignore matchers from root down to
// the current directory, so a nested .gitignore only affects its own
// subtree.
type ignoreStack struct {
	matchers []*gitignore.GitIgnore
	dirs     []string
	vcsRoot  bool
}

func newIgnoreStack() *ignoreStack {
	return &ignoreStack{}
}

func (s *ignoreStack) push(dir string) *ignoreStack {
	next := &ignoreStack{
		matchers: s.matchers,
		dirs:     s.dirs,
		vcsRoot:  s.vcsRoot,
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		next.vcsRoot = true
	}
	if m, err := gitignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
		next.matchers = append(append([]*gitignore.GitIgnore{}, s.matchers...), m)
		next.dirs = append(append([]string{}, s.dirs...), dir)
	}
	return next
}

func (s *ignoreStack) ignores(path string) bool {
	if !s.vcsRoot {
		return false
	}
	for i, m := range s.matchers {
		rel, err := filepath.Rel(s.dirs[i], path)
		if err != nil {
			continue
		}
		if m.MatchesPath(rel) {
			return true
		}
	}
	return false
}

func walkDir(dir string, ignore *ignoreStack, match MatchFunc, fn func(path string)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	ignore = ignore.push(dir)

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if ignore.ignores(path) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				continue
			}
			resolvedInfo, err := os.Stat(resolved)
			if err != nil {
				continue
			}
			if resolvedInfo.IsDir() {
				if err := walkDir(resolved, ignore, match, fn); err != nil {
					continue
				}
				continue
			}
			if match(entry.Name()) {
				fn(path)
			}
			continue
		}

		if entry.IsDir() {
			if err := walkDir(path, ignore, match, fn); err != nil {
				continue
			}
			continue
		}

		if match(entry.Name()) {
			fn(path)
		}
	}
	return nil
}

// IsRuskfile reports whether basename matches the rusk.toml / .rusk.toml
// naming convention.
func IsRuskfile(basename string) bool {
	return basename == "rusk.toml" || basename == ".rusk.toml"
}
