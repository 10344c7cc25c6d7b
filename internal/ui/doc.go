// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a thin progress front-end over the transfer engine:
//  1. [RunView] : Live pipeline progress with a spinner and phase messages
//  2. [ResultView] : Per-recording outcomes and run totals
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the TransferEngine, providing
// non-blocking status reporting during the run.
package ui
