package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Host completed successfully
	SymbolFail     = "✗" // Host failed
	SymbolProgress = "◐" // Host in progress
)
