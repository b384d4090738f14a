package platform

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Scanner buffer limits. yt-dlp -J output for a single video can be large.
const (
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 16 * 1024 * 1024
)

// Runner executes external commands
type Runner interface {
	// Output runs the command and returns its standard output
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Lines runs the command and calls fn for every line written to standard output
	Lines(ctx context.Context, fn func(line string), name string, args ...string) error
}

// ExecRunner runs commands on the local machine
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Output runs the command and returns its standard output
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, commandError(name, err, stderr.String())
	}
	return out, nil
}

// Lines runs the command and streams its standard output line by line
func (r *ExecRunner) Lines(ctx context.Context, fn func(line string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, scanBufferInitial), scanBufferMax)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		return commandError(name, err, stderr.String())
	}
	if scanErr != nil {
		return fmt.Errorf("failed to read %s output: %w", name, scanErr)
	}
	return nil
}

func commandError(name string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	if i := strings.LastIndexByte(stderr, '\n'); i >= 0 {
		stderr = stderr[i+1:]
	}
	return fmt.Errorf("%s failed: %w: %s", name, err, stderr)
}
