// Package scene declares the capabilities the kiosk consumes from the host
// runtime: actor creation and destruction, parent/child attachment, click
// binding, URL-keyed video-stream assets and media playback control. Rendering
// and scene-graph management stay with the host; this package only carries the
// handles and the transform math needed to place actors.
package scene
