// Package pipeline runs out-of-process restream and visualize pipelines.
//
// A pipeline is a chain of commands connected by pipes whose last stage
// publishes an HLS stream. The Manager refuses new pipelines once the HLS
// directory holds more playlists than allowed, waits for the first segments
// to appear and tracks every started pipeline so it can be killed on any
// exit path.
package pipeline
