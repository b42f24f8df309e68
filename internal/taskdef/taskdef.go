// Package taskdef holds the raw, per-config-file task shape and its
// conversion into the merged-namespace TaskDef used by the rest of rusk.
package taskdef

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/yarlson/rusk/internal/normpath"
	"github.com/yarlson/rusk/internal/taskkey"
)

// RawTask is the per-task TOML shape inside a [tasks.<name>] table. All
// fields are optional; go-toml/v2 ignores unknown keys by default, which
// gives us "preserved for forward compatibility but otherwise ignored"
// behaviour at no extra cost.
type RawTask struct {
	Script      string            `toml:"script"`
	Depends     []string          `toml:"depends"`
	Envs        map[string]string `toml:"envs"`
	Cwd         string            `toml:"cwd"`
	Description string            `toml:"description"`
}

// RawFile is the top-level shape of a rusk.toml / .rusk.toml document.
type RawFile struct {
	Tasks map[string]RawTask `toml:"tasks"`
	Envs  map[string]string  `toml:"envs"`
}

// ParseRawFile decodes TOML bytes into a RawFile. Any decode error
// (syntax error or a field whose TOML type cannot convert to its Go
// counterpart) is a whole-file failure — IO/parse errors are scoped per
// file, never fatal to the whole scan.
func ParseRawFile(data []byte) (*RawFile, error) {
	var raw RawFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	return &raw, nil
}

// TaskDef is a task definition after per-file resolution: depends
// strings have become TaskKeys resolved against the owning file's
// directory, and cwd has become a NormPath anchored the same way.
type TaskDef struct {
	Envs        map[string]string
	Script      string
	Cwd         *normpath.Path
	Depends     []taskkey.Key
	Description string
}

// Resolve converts a RawTask, found in the config file rooted at dir,
// into a TaskDef. depends literals and a relative cwd are both resolved
// against dir, the config file's own directory.
func (r RawTask) Resolve(dir *normpath.Path) (TaskDef, error) {
	cwd := dir
	if r.Cwd != "" {
		resolved, err := normpath.Normalize(r.Cwd, dir)
		if err != nil {
			return TaskDef{}, fmt.Errorf("resolve cwd %q: %w", r.Cwd, err)
		}
		cwd = resolved
	}

	depends := make([]taskkey.Key, 0, len(r.Depends))
	for _, literal := range r.Depends {
		key, err := taskkey.Parse(literal, dir)
		if err != nil {
			return TaskDef{}, fmt.Errorf("parse depends entry %q: %w", literal, err)
		}
		depends = append(depends, key)
	}

	envs := r.Envs
	if envs == nil {
		envs = map[string]string{}
	}

	return TaskDef{
		Envs:        envs,
		Script:      r.Script,
		Cwd:         cwd,
		Depends:     depends,
		Description: r.Description,
	}, nil
}
