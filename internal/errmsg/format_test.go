//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpDocumentRemove,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpDocumentRemove,
			err:      errors.New("file not found"),
			expected: "Failed to remove document: file not found",
		},
		{
			name:     "library scan operation",
			op:       OpLibraryScan,
			err:      errors.New("permission denied"),
			expected: "Failed to scan library: permission denied",
		},
		{
			name:     "notify operation",
			op:       OpNotify,
			err:      errors.New("malformed asset"),
			expected: "Failed to play notification sound: malformed asset",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpDocumentLoad,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpDocumentLoad,
			context:  "song.mp3",
			err:      errors.New("permission denied"),
			expected: "Failed to load document 'song.mp3': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpDocumentLoad,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to load document: permission denied",
		},
		{
			name:     "decode with title context",
			op:       OpPlaybackDecode,
			context:  "Voice message",
			err:      errors.New("unknown format"),
			expected: "Failed to play 'Voice message': unknown format",
		},
		{
			name:     "scan with path context",
			op:       OpLibraryScan,
			context:  "/home/user/music",
			err:      errors.New("directory not found"),
			expected: "Failed to scan library '/home/user/music': directory not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpPlaybackStart, OpPlaybackDecode, OpPlaybackSeek, OpPlaybackPause,
		OpNotify, OpDeviceOpen,
		OpDocumentLoad, OpDocumentRegister, OpDocumentRemove,
		OpLibraryScan, OpLibraryLoad,
		OpVolumeSave,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			// Verify the format includes the operation
			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
