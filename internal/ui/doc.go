// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for shuffling:
//  1. [PlaylistListView] : Browse playlists, liked songs first
//  2. [ConfirmView] : Confirm the shuffle-and-queue run
//  3. [ShuffleView] : Monitor queueing progress in real time
//  4. [ResultView] : Display the run outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through the engine run's bounded channel, providing
// non-blocking status reporting while the queue drains.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
