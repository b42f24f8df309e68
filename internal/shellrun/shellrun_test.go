package shellrun

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript_EmptyScriptYieldsNoOpProgram(t *testing.T) {
	program, err := ParseScript("")
	require.NoError(t, err)
	assert.Empty(t, program.Stmts)
}

func TestParseScript_ConcatenatesMultipleLines(t *testing.T) {
	program, err := ParseScript("echo one\necho two\n")
	require.NoError(t, err)
	assert.Len(t, program.Stmts, 2)
}

func TestParseScript_RejectsSyntaxError(t *testing.T) {
	_, err := ParseScript("if [ then")
	assert.Error(t, err)
}

func TestExecute_RunsProgramAndCapturesStdout(t *testing.T) {
	program, err := ParseScript("echo hello")
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	exitCode, err := Execute(context.Background(), program, State{Cwd: "."}, nil, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "hello\n", stdout.String())
}

func TestExecute_ReturnsNonZeroExitCodeWithoutError(t *testing.T) {
	program, err := ParseScript("exit 5")
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	exitCode, err := Execute(context.Background(), program, State{Cwd: "."}, nil, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, 5, exitCode)
}

func TestExecute_PassesEnvironmentVariables(t *testing.T) {
	program, err := ParseScript("echo $GREETING")
	require.NoError(t, err)

	state := State{Cwd: ".", Envs: map[string]string{"GREETING": "hi"}}
	var stdout, stderr bytes.Buffer
	_, err = Execute(context.Background(), program, state, nil, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, "hi\n", stdout.String())
}
