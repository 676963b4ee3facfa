// Package ui provides terminal output components for drover's CLI.
//
// The package includes the branded header, per-host run status lines,
// and styled text helpers using the Lip Gloss library for consistent
// terminal styling across commands.
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings and skipped hosts
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - Host names, in-progress indicators
//
// Use DisableColors() to switch to monochrome output (for --no-color flag).
package ui
