package procrun

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"lessonvault/internal/logging"
	"lessonvault/internal/services"
)

const (
	defaultGrace = 500 * time.Millisecond
	// waitDelay bounds how long Wait keeps copying output after the child
	// exits, in case a grandchild inherited the pipes.
	waitDelay = 2 * time.Second
)

// Runner starts external tools with live output and supervises them until
// exit or cancellation.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
	grace  time.Duration
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput overrides where child stdout and stderr are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// WithGracePeriod sets the SIGTERM to SIGKILL escalation window.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.grace = d
		}
	}
}

// New constructs a Runner writing child output to the process's own stdout
// and stderr.
func New(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		grace:  defaultGrace,
		logger: logging.NewComponentLogger(logger, "procrun"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and waits for it. When ctx is cancelled first, onInterrupt
// is called, then any survivor gets SIGTERM and after the grace period
// SIGKILL; the returned error matches services.ErrCancelled and the context
// error. A non-zero exit returns an ErrExternalTool error carrying
// failureMessage.
func (r *Runner) Run(ctx context.Context, cmd Command, onInterrupt InterruptFunc, failureMessage string) error {
	label := cmd.Label
	if label == "" {
		label = cmd.Name
	}
	if err := ctx.Err(); err != nil {
		return services.Cancelled(label, cmd.Name, err)
	}

	logger := logging.WithContext(ctx, r.logger)
	execCmd := exec.Command(cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	execCmd.Stdout = r.stdout
	execCmd.Stderr = r.stderr
	execCmd.WaitDelay = waitDelay
	// Own process group: a terminal Ctrl-C reaches lessonvault only, which then
	// decides how each child is stopped.
	execCmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	logger.Debug("external command starting",
		logging.String("label", label),
		logging.String("command", cmd.String()),
	)
	started := time.Now()
	if err := execCmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, label, cmd.Name, "start failed", err)
	}

	proc := &Process{cmd: execCmd, done: make(chan struct{})}
	go func() {
		proc.err = execCmd.Wait()
		close(proc.done)
	}()

	select {
	case <-proc.done:
		return r.finish(logger, cmd, label, proc.err, started, failureMessage)
	case <-ctx.Done():
	}

	logger.Info("stopping external command",
		logging.String("label", label),
		logging.Int("pid", proc.PID()),
		logging.String(logging.FieldEventType, "process_interrupt"),
	)
	if onInterrupt != nil && !proc.Exited() {
		onInterrupt(proc)
	}
	if !proc.Exited() {
		_ = proc.Signal(syscall.SIGTERM)
		if !proc.Wait(r.grace) {
			logger.Warn("external command ignored SIGTERM; killing",
				logging.String("label", label),
				logging.Int("pid", proc.PID()),
				logging.String(logging.FieldEventType, "process_kill"),
				logging.String(logging.FieldImpact, "tool output may be incomplete"),
				logging.String(logging.FieldErrorHint, "partial files are cleaned up by the caller"),
			)
			_ = proc.Kill()
			proc.Wait(0)
		}
	}
	logger.Debug("external command stopped",
		logging.String("label", label),
		logging.Duration("elapsed", time.Since(started)),
	)
	return services.Cancelled(label, cmd.Name, ctx.Err())
}

func (r *Runner) finish(logger *slog.Logger, cmd Command, label string, waitErr error, started time.Time, failureMessage string) error {
	elapsed := time.Since(started)
	if waitErr == nil {
		logger.Debug("external command finished",
			logging.String("label", label),
			logging.Duration("elapsed", elapsed),
		)
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	logger.Debug("external command failed",
		logging.String("label", label),
		logging.String("command", cmd.String()),
		logging.Int("exit_code", exitCode),
		logging.Duration("elapsed", elapsed),
	)
	if failureMessage == "" {
		failureMessage = "command failed"
	}
	return services.Wrap(services.ErrExternalTool, label, cmd.Name, failureMessage, waitErr)
}
