// Package player drives playback of one video at a time on one of several
// named screen layouts. All methods must be called from the event loop.
package player
