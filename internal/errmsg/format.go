// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackDecode Op = "play"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackPause  Op = "pause playback"
	OpNotify         Op = "play notification sound"
	OpDeviceOpen     Op = "open audio device"

	// Document operations
	OpDocumentLoad     Op = "load document"
	OpDocumentRegister Op = "add document"
	OpDocumentRemove   Op = "remove document"

	// Library operations
	OpLibraryScan Op = "scan library"
	OpLibraryLoad Op = "load library"

	// Settings
	OpVolumeSave Op = "save volume"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
