package executable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarlson/rusk/internal/normpath"
	"github.com/yarlson/rusk/internal/ruskerr"
	"github.com/yarlson/rusk/internal/taskdef"
	"github.com/yarlson/rusk/internal/taskkey"
)

func TestNormalize_ParsesScriptAndMergesEnvs(t *testing.T) {
	cwd, err := normpath.CWD()
	require.NoError(t, err)

	key := taskkey.Phony("build")
	defs := map[taskkey.Key]taskdef.TaskDef{
		key: {
			Script: "echo hi",
			Cwd:    cwd,
			Envs:   map[string]string{"TASK_ONLY": "task"},
		},
	}

	execs, err := Normalize(defs, map[string]string{"GLOBAL": "global", "TASK_ONLY": "overridden-by-global-wins-nothing"})
	require.NoError(t, err)

	ex := execs[key]
	require.NotNil(t, ex.Program)
	assert.Equal(t, "global", ex.Envs["GLOBAL"])
	assert.Equal(t, "task", ex.Envs["TASK_ONLY"], "a task's own envs override the global table")
}

func TestNormalize_RejectsMissingCwd(t *testing.T) {
	missing, err := normpath.Normalize("/definitely/not/a/real/directory", nil)
	require.NoError(t, err)

	key := taskkey.Phony("build")
	defs := map[taskkey.Key]taskdef.TaskDef{
		key: {Script: "echo hi", Cwd: missing},
	}

	_, err = Normalize(defs, nil)

	require.Error(t, err)
	var dirErr *ruskerr.DirectoryNotFoundError
	require.ErrorAs(t, err, &dirErr)
}

func TestNormalize_RejectsUnparsableScript(t *testing.T) {
	cwd, err := normpath.CWD()
	require.NoError(t, err)

	key := taskkey.Phony("build")
	defs := map[taskkey.Key]taskdef.TaskDef{
		key: {Script: "if [ then", Cwd: cwd},
	}

	_, err = Normalize(defs, nil)

	require.Error(t, err)
	var scriptErr *ruskerr.ScriptParseError
	require.ErrorAs(t, err, &scriptErr)
}

func TestDeps_AdaptsToDependsField(t *testing.T) {
	a := taskkey.Phony("a")
	b := taskkey.Phony("b")
	ex := Executable{Depends: []taskkey.Key{a, b}}

	assert.Equal(t, []taskkey.Key{a, b}, Deps(ex))
}
