// Package viz is the terminal front end for focus sessions.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: intro, play and summary screens driven by a [Feed]
//   - [Canvas]: styled cell grid the arena is painted on
//   - [Arena]: maps viewport coordinates to terminal cells and back
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Enter/R - Start or restart a session
//	Esc     - End the running session
//	T       - Cycle color themes
//	?       - Toggle full help
//	Q       - Quit
//
// # Mouse
//
// Pointer motion over the arena moves the tether and decides whether the
// signal is locked. A left click on a distraction clears it.
package viz
