package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarlson/rusk/internal/ruskerr"
)

// TestMain chdir's into a single fixture directory before any test runs.
// internal/normpath.CWD memoizes the working directory once per process,
// matching a real rusk invocation (one process, one CWD) — so every
// subtest below shares this one fixture rather than each chdir-ing
// independently.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "rusk-cmd-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	ruskfile := `
[tasks.lint]
script = "echo lint"
description = "run the linter"

[tasks.build]
script = "echo build"
depends = ["lint"]

[tasks.broken]
script = "exit 7"

[tasks.cycle_a]
depends = ["cycle_b"]

[tasks.cycle_b]
depends = ["cycle_a"]
`
	if err := os.WriteFile(filepath.Join(dir, "rusk.toml"), []byte(ruskfile), 0644); err != nil {
		panic(err)
	}

	original, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	defer func() { _ = os.Chdir(original) }()

	os.Exit(m.Run())
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	rootCmd := NewRootCmd()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_NoArgsListsTasks(t *testing.T) {
	stdout, _, err := runCmd(t)

	require.NoError(t, err)
	assert.Contains(t, stdout, "lint\trun the linter\tin")
	assert.Contains(t, stdout, "build\t\tin")
}

func TestRootCmd_RunsSingleTask(t *testing.T) {
	stdout, _, err := runCmd(t, "lint")

	require.NoError(t, err)
	assert.Equal(t, "lint\n", stdout)
}

func TestRootCmd_RunsDependencyBeforeDependent(t *testing.T) {
	stdout, _, err := runCmd(t, "build")

	require.NoError(t, err)
	assert.Equal(t, "lint\nbuild\n", stdout)
}

func TestRootCmd_FailingTaskExitsWithItsCode(t *testing.T) {
	_, _, err := runCmd(t, "broken")

	require.Error(t, err)
	var taskFailed *ruskerr.TaskFailedError
	require.ErrorAs(t, err, &taskFailed)
	assert.Equal(t, 7, taskFailed.ExitCode)
}

func TestRootCmd_CycleIsRefusedBeforeAnyShellRuns(t *testing.T) {
	stdout, _, err := runCmd(t, "cycle_a")

	require.Error(t, err)
	var circular *ruskerr.CircularDependencyError
	require.ErrorAs(t, err, &circular)
	assert.Empty(t, stdout)
}

func TestRootCmd_MissingTaskIsRefused(t *testing.T) {
	_, _, err := runCmd(t, "does-not-exist")

	require.Error(t, err)
	var notFound *ruskerr.ItemNotFoundError
	require.ErrorAs(t, err, &notFound)
}
