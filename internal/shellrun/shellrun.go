// Package shellrun implements the shell-parser / shell-executor
// contract as an external black box, using mvdan.cc/sh/v3 — the same
// library FollowTheProcess/spok (a Go task runner) uses for the
// identical purpose.
package shellrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ParseLine implements the parse(line) -> program | error collaborator.
func ParseLine(line string) ([]*syntax.Stmt, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, err
	}
	return file.Stmts, nil
}

// ParseScript splits script by lines, parses each line, and concatenates
// the resulting statement lists into one sequential program. An empty
// or absent script yields an empty, valid no-op program.
func ParseScript(script string) (*syntax.File, error) {
	program := &syntax.File{Name: "task"}
	for _, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		stmts, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		program.Stmts = append(program.Stmts, stmts...)
	}
	return program, nil
}

// State bundles the merged environment and working directory a task's
// shell body runs with. Execute layers Envs over the process
// environment, so entries in Envs override inherited variables.
type State struct {
	Envs map[string]string
	Cwd  string
}

// Execute implements the execute(program, state, stdin, stdout, stderr)
// -> exit_code collaborator. A nil error with a non-zero exit code is
// the ordinary "the task's script failed" outcome (surfaced by the
// caller as TaskFailed); a non-nil error means the shell itself could
// not be started (e.g. an invalid cwd).
func Execute(ctx context.Context, program *syntax.File, state State, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	env := os.Environ()
	for k, v := range state.Envs {
		env = append(env, k+"="+v)
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(env...)),
		interp.Dir(state.Cwd),
		interp.StdIO(stdin, stdout, stderr),
	)
	if err != nil {
		return 0, fmt.Errorf("create shell runner: %w", err)
	}

	runErr := runner.Run(ctx, program)
	if runErr == nil {
		return 0, nil
	}
	var status interp.ExitStatus
	if errors.As(runErr, &status) {
		return int(status), nil
	}
	return 0, runErr
}
