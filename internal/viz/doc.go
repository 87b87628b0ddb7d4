// Package viz is a terminal viewer for a running layout, built on Bubble Tea.
//
// Nodes and edges are drawn on a Braille [Canvas], which gives a 2x4 dot
// grid per terminal cell. A [Camera] maps layout coordinates onto the
// canvas and follows the layout until the user pans or zooms.
//
// # Key Bindings
//
//	Space   - Pause/Resume the simulation
//	Tab     - Select the next node (Shift+Tab for the previous one)
//	H/J/K/L - Drag the selected node
//	P       - Pin or unpin the selected node
//	Arrows  - Pan
//	+/-     - Zoom
//	C       - Re-center and follow the layout
//	[ ]     - Fewer/more ticks per frame
//	T       - Cycle color themes
//	?       - Show help overlay
//	Q       - Quit
package viz
