// Package kiosk is the composition root: it builds the content sources
// from the configuration, installs the panels one at a time and picks the
// landing panel from the startup parameters.
package kiosk
