package processor

import (
	"context"
	"fmt"

	execute "github.com/alexellis/go-execute/v2"
)

// CommandRunner abstracts external tool invocation so processors can be
// tested without the real binaries installed.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands through go-execute. A non-zero exit code is
// returned as an error carrying the tool's stderr.
type ExecRunner struct{}

var _ CommandRunner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, command string, args ...string) (string, string, error) {
	task := execute.ExecTask{
		Command: command,
		Args:    args,
	}
	res, err := task.Execute(ctx)
	if err != nil {
		return res.Stdout, res.Stderr, err
	}
	if res.ExitCode != 0 {
		return res.Stdout, res.Stderr, fmt.Errorf("%s exited with code %d: %s", command, res.ExitCode, res.Stderr)
	}
	return res.Stdout, res.Stderr, nil
}
