package pipeline

import (
	"context"
)

// Process is a started chain of commands
type Process interface {
	// Wait blocks until every stage has exited
	Wait() error
	// Kill terminates every stage and its descendants. Killing processes
	// that already exited is not an error.
	Kill() error
}

// Launcher starts the stages of a pipeline, each stage reading the
// previous stage's output
type Launcher interface {
	Launch(stages [][]string) (Process, error)
}

// Starter is what panels need to start pipelines
type Starter interface {
	Start(ctx context.Context, req Request) (Result, error)
}
