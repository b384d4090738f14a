// Package geometry contains the named screen layouts the video player can
// instantiate. Layouts are plain data; the player turns them into actors.
package geometry
