// Package app defines the lifecycle every panel implements and the switcher
// that keeps at most one panel open.
package app
