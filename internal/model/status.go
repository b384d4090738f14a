package model

// PipelineStatus represents the status of an out-of-process media pipeline
type PipelineStatus string

const (
	// PipelineStatusQueued means the pipeline was refused because capacity is exhausted
	PipelineStatusQueued PipelineStatus = "Queued"

	// PipelineStatusStarting means the processes are spawned but no output exists yet
	PipelineStatusStarting PipelineStatus = "Starting"

	// PipelineStatusStreaming means output segments are being produced
	PipelineStatusStreaming PipelineStatus = "Streaming"

	// PipelineStatusStopping means a kill was requested and is in progress
	PipelineStatusStopping PipelineStatus = "Stopping"

	// PipelineStatusStopped means the pipeline was terminated by the kiosk
	PipelineStatusStopped PipelineStatus = "Stopped"

	// PipelineStatusExited means the processes exited on their own
	PipelineStatusExited PipelineStatus = "Exited"

	// PipelineStatusError means the pipeline failed to start or timed out
	PipelineStatusError PipelineStatus = "Error"
)

// String returns the string representation of PipelineStatus
func (ps PipelineStatus) String() string {
	return string(ps)
}

// IsActive returns true if processes may still be running
func (ps PipelineStatus) IsActive() bool {
	return ps == PipelineStatusStarting || ps == PipelineStatusStreaming || ps == PipelineStatusStopping
}

// IsFinished returns true if the pipeline reached a terminal state
func (ps PipelineStatus) IsFinished() bool {
	return ps == PipelineStatusStopped || ps == PipelineStatusExited || ps == PipelineStatusError || ps == PipelineStatusQueued
}
