// Package executable normalizes a raw TaskDef into an Executable: script
// text parsed into a shell AST, cwd validated to exist, envs merged.
package executable

import (
	"mvdan.cc/sh/v3/syntax"

	"github.com/yarlson/rusk/internal/normpath"
	"github.com/yarlson/rusk/internal/ruskerr"
	"github.com/yarlson/rusk/internal/shellrun"
	"github.com/yarlson/rusk/internal/taskdef"
	"github.com/yarlson/rusk/internal/taskkey"
)

// Executable is a task after script parsing, env merging, and cwd
// validation — ready for the executor to run.
type Executable struct {
	Key         taskkey.Key
	Program     *syntax.File
	Envs        map[string]string
	Cwd         *normpath.Path
	Depends     []taskkey.Key
	Description string
}

// Deps adapts Executable to tree.DepsFunc.
func Deps(e Executable) []taskkey.Key {
	return e.Depends
}

// Normalize converts every entry of defs into an Executable, merging
// globalEnv beneath each task's own envs (task overrides global) and
// failing the whole normalization with DirectoryNotFound or
// ScriptParseError at the first task that cannot be normalized.
func Normalize(defs map[taskkey.Key]taskdef.TaskDef, globalEnv map[string]string) (map[taskkey.Key]Executable, error) {
	result := make(map[taskkey.Key]Executable, len(defs))

	for key, def := range defs {
		if !def.Cwd.IsExistingDir() {
			return nil, &ruskerr.DirectoryNotFoundError{Path: def.Cwd.Abs()}
		}

		program, err := shellrun.ParseScript(def.Script)
		if err != nil {
			return nil, &ruskerr.ScriptParseError{Key: key.String(), Cause: err}
		}

		envs := make(map[string]string, len(globalEnv)+len(def.Envs))
		for k, v := range globalEnv {
			envs[k] = v
		}
		for k, v := range def.Envs {
			envs[k] = v
		}

		depends := make([]taskkey.Key, len(def.Depends))
		copy(depends, def.Depends)

		result[key] = Executable{
			Key:         key,
			Program:     program,
			Envs:        envs,
			Cwd:         def.Cwd,
			Depends:     depends,
			Description: def.Description,
		}
	}

	return result, nil
}
