// Package ui holds the terminal styling shared by inkdash commands: the color
// palette, status symbols, and table rendering built on Lip Gloss and the
// Bubbles table component.
//
// # Color Scheme
//
// Colors are ANSI codes so they degrade well on the small serial consoles
// these hosts are usually reached through:
//
//	ColorSuccess (green)  - Passing checks, healthy metrics
//	ColorError   (red)    - Failed checks, error tokens
//	ColorWarning (yellow) - Degraded but usable
//	ColorMuted   (gray)   - Secondary text, timing info
//
// # Symbols
//
//	SymbolSuccess  - Check passed
//	SymbolFail     - Check failed
//	SymbolWarn     - Check passed with a warning
//	SymbolPending  - Not evaluated
package ui
