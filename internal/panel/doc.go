// Package panel implements the kiosk panels. Every panel owns its menus and,
// for video panels, one player; all of their methods and callbacks run on
// the event loop.
package panel
