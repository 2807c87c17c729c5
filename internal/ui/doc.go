// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for image styling:
//  1. [FilePickView] : Browse images in the working directory
//  2. [StylePickView] : Choose a style preset
//  3. [ConfirmView] : Confirm the submission
//  4. [SubmitView] : Monitor real-time progress updates
//  5. [ResultView] : Display the styled image URLs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via typed message structs.
// Progress updates flow through a channel from the workflow Controller, providing non-blocking status reporting during submission.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
