// Package taskkey implements the identity of a task: either a phony
// symbolic name local to one config file, or a file-backed absolute path
// representing a build artifact.
package taskkey

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yarlson/rusk/internal/normpath"
)

// Kind discriminates the two forms a Key can take.
type Kind int

const (
	// KindPhony identifies a task by a symbolic name local to one file.
	KindPhony Kind = iota
	// KindFile identifies a task by an absolute, normalized path.
	KindFile
)

var phonyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Key is a task's identity, comparable by value so it can be used
// directly as a map key. id holds the name for phony keys and the
// absolute path for file keys.
type Key struct {
	Kind Kind
	id   string
}

// ErrInvalidTaskKey reports a literal that is neither a valid phony name
// nor a valid path-like reference.
type ErrInvalidTaskKey struct {
	Literal string
	Reason  string
}

func (e *ErrInvalidTaskKey) Error() string {
	return fmt.Sprintf("invalid task key %q: %s", e.Literal, e.Reason)
}

// Parse interprets literal as a TaskKey. base is the directory a File
// literal is resolved against: the CWD when parsing a CLI argument, or
// the owning config file's directory when parsing a depends entry.
func Parse(literal string, base *normpath.Path) (Key, error) {
	if literal == "" {
		return Key{}, &ErrInvalidTaskKey{Literal: literal, Reason: "empty string is not allowed"}
	}
	if strings.ContainsAny(literal, "/.") {
		p, err := normpath.Normalize(literal, base)
		if err != nil {
			return Key{}, &ErrInvalidTaskKey{Literal: literal, Reason: err.Error()}
		}
		return Key{Kind: KindFile, id: p.Abs()}, nil
	}
	if !phonyPattern.MatchString(literal) {
		return Key{}, &ErrInvalidTaskKey{
			Literal: literal,
			Reason:  "must match ^[A-Za-z][A-Za-z0-9_-]*$, or contain '/' or '.' to be a path",
		}
	}
	return Key{Kind: KindPhony, id: literal}, nil
}

// Phony constructs a phony Key directly from an already-validated name.
func Phony(name string) Key {
	return Key{Kind: KindPhony, id: name}
}

// File constructs a file-backed Key directly from an already-normalized
// absolute path.
func File(absPath string) Key {
	return Key{Kind: KindFile, id: absPath}
}

// String returns the canonical string form: the name for phony keys, the
// absolute path for file keys. This is also the map-key identity.
func (k Key) String() string {
	return k.id
}

// Display returns the short form suitable for CLI output: the name for
// phony keys, the CWD-relative form (when shorter) for file keys.
func (k Key) Display() string {
	if k.Kind == KindPhony {
		return k.id
	}
	cwd, err := normpath.CWD()
	if err != nil {
		return k.id
	}
	rel, err := filepath.Rel(cwd.Abs(), k.id)
	if err != nil || len(rel) >= len(k.id) {
		return k.id
	}
	return rel
}

// Equal reports whether two keys denote the same task identity.
func (k Key) Equal(other Key) bool {
	return k == other
}

// Less orders phony keys before file keys; within a kind, lexicographic
// order on the canonical string form.
func (k Key) Less(other Key) bool {
	if k.Kind != other.Kind {
		return k.Kind == KindPhony
	}
	return k.id < other.id
}

// IsPhony reports whether k is a phony task key.
func (k Key) IsPhony() bool {
	return k.Kind == KindPhony
}

// IsFile reports whether k is a file-backed task key.
func (k Key) IsFile() bool {
	return k.Kind == KindFile
}
