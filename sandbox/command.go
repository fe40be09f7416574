package sandbox

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Command is one pending invocation of the subject binary, bound to
// the owning project's directory. Commands are not reused.
type Command struct {
	project *Project
	args    []string
	env     map[string]string
	timeout time.Duration
}

// Command builds an invocation of the subject binary with the given
// arguments. The working directory is the project directory.
func (p *Project) Command(args ...string) *Command {
	return &Command{
		project: p,
		args:    args,
		env:     make(map[string]string),
		timeout: p.timeout,
	}
}

// Env overlays one variable on the inherited environment.
func (c *Command) Env(key, value string) *Command {
	c.env[key] = value
	return c
}

// Timeout bounds this invocation. Zero means no timeout.
func (c *Command) Timeout(d time.Duration) *Command {
	c.timeout = d
	return c
}

// Run spawns the subject binary and blocks until it exits, capturing
// stdout and stderr in full. A non-zero exit code is recorded in the
// result, not returned as an error; only launch failures (missing or
// unresolvable binary, permission denied) produce an error.
func (c *Command) Run(ctx context.Context) (*CommandResult, error) {
	p := c.project

	bin, err := p.locator.Resolve()
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	env := os.Environ()
	for key, value := range c.env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	start := time.Now()
	stdout, stderr, exitCode, err := p.runner.RunCommand(ctx, bin, c.args, p.dir, env)
	if err != nil {
		return nil, &SpawnError{Binary: bin, Err: err}
	}
	elapsed := time.Since(start)

	p.logger.Debug("command completed",
		zap.String("id", p.id),
		zap.Strings("args", c.args),
		zap.Int("exit_code", exitCode),
		zap.Duration("duration", elapsed))

	return &CommandResult{
		Args:     c.args,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
		Duration: elapsed,

		t:        p.t,
		matcher:  p.matcher,
		renderer: p.renderer,
	}, nil
}

// Run is shorthand for Command(args...).Run(ctx).
func (p *Project) Run(ctx context.Context, args ...string) (*CommandResult, error) {
	return p.Command(args...).Run(ctx)
}

// MustRun runs the subject binary and fails the bound test on any
// launch error, so assertions can chain directly off the result.
func (p *Project) MustRun(args ...string) *CommandResult {
	if p.t != nil {
		p.t.Helper()
	}
	res, err := p.Run(context.Background(), args...)
	if err != nil {
		p.fail("sandbox: run %v: %v", args, err)
	}
	return res
}
