package ui

// Package ui describes the in-world menu toolkit supplied by the host
// runtime, plus the pieces of menu behavior that are independent of it:
// paginated lists, fit-to-box text wrapping and localized prompts.
