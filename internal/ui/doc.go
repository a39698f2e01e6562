// Package ui holds terminal styling for the CLI: a lipgloss [Palette] and a
// static [ProgressBar] drawn with bubbles/progress for each processed track.
package ui
