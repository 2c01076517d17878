package procrun

import (
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Process is a running child handed to interrupt handlers.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// PID returns the child's process ID.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Signal delivers sig unless the child has already exited.
func (p *Process) Signal(sig os.Signal) error {
	if p.Exited() {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}

// Kill sends SIGKILL unless the child has already exited.
func (p *Process) Kill() error {
	return p.Signal(syscall.SIGKILL)
}

// Exited reports whether the child has been reaped.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the child exits or d elapses, reporting whether it exited.
// A non-positive d waits without bound.
func (p *Process) Wait(d time.Duration) bool {
	if d <= 0 {
		<-p.done
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}

// InterruptFunc asks a child to stop after cancellation. Runner escalates to
// SIGTERM and SIGKILL for whatever is still running when it returns.
type InterruptFunc func(*Process)

// GracefulInterrupt sends SIGINT and waits up to timeout for a cooperative
// exit. aria2c answers SIGINT by flushing its control file so the next run
// resumes instead of starting over.
func GracefulInterrupt(timeout time.Duration) InterruptFunc {
	return func(p *Process) {
		_ = p.Signal(syscall.SIGINT)
		p.Wait(timeout)
	}
}

// ForcefulInterrupt sends SIGINT, waits settle, then SIGKILL and reaps.
func ForcefulInterrupt(settle time.Duration) InterruptFunc {
	return func(p *Process) {
		_ = p.Signal(syscall.SIGINT)
		if p.Wait(settle) {
			return
		}
		_ = p.Kill()
		p.Wait(0)
	}
}
