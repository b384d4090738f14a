package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// killTimeout bounds the process table walk of one kill
const killTimeout = 5 * time.Second

// ExecLauncher runs stages as local processes connected by OS pipes
type ExecLauncher struct{}

// NewExecLauncher creates a launcher
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{}
}

// Launch implements Launcher
func (l *ExecLauncher) Launch(stages [][]string) (Process, error) {
	if len(stages) == 0 {
		return nil, errors.New("no stages")
	}
	cmds := make([]*exec.Cmd, len(stages))
	for i, args := range stages {
		cmds[i] = exec.Command(args[0], args[1:]...)
	}

	var parentEnds []*os.File
	closeParentEnds := func() {
		for _, f := range parentEnds {
			f.Close()
		}
	}
	for i := 1; i < len(cmds); i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeParentEnds()
			return nil, fmt.Errorf("failed to create pipe: %w", err)
		}
		cmds[i-1].Stdout = w
		cmds[i].Stdin = r
		parentEnds = append(parentEnds, r, w)
	}

	p := &execProcess{}
	for _, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			closeParentEnds()
			_ = p.Kill()
			_ = p.Wait()
			return nil, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
		}
		p.cmds = append(p.cmds, cmd)
	}
	// The children hold their own copies.
	closeParentEnds()
	return p, nil
}

type execProcess struct {
	cmds []*exec.Cmd
}

// Wait implements Process
func (p *execProcess) Wait() error {
	var errs []error
	for _, cmd := range p.cmds {
		if err := cmd.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd.Path, err))
		}
	}
	return errors.Join(errs...)
}

// Kill implements Process
func (p *execProcess) Kill() error {
	ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
	defer cancel()
	var errs []error
	for _, cmd := range p.cmds {
		if cmd.Process == nil {
			continue
		}
		if err := killTree(ctx, int32(cmd.Process.Pid)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// killTree kills pid and all of its descendants. Processes that are already
// gone are skipped.
func killTree(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil
	}
	children, _ := p.ChildrenWithContext(ctx)
	if err := p.KillWithContext(ctx); err != nil && !isGone(err) {
		return fmt.Errorf("kill %d: %w", pid, err)
	}
	var errs []error
	for _, c := range children {
		if err := killTree(ctx, c.Pid); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, process.ErrorProcessNotRunning)
}
