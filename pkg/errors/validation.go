package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateTaskName validates a task name resolved from a graph node.
// It rejects names that could be used for path traversal or injection attacks
// when the name is later mapped to an editor location.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateTaskName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidContent, "task name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidContent, "task name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidContent, "task name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidContent, "task name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDocumentPath validates a document path handed to the host.
// It prevents obviously broken inputs before the watcher and scanner touch them.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateDocumentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "document path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "document path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "document path contains invalid characters")
		}
	}

	return nil
}

// nodeIDRegex matches node identifiers the view is allowed to send back
// in showTaskDetails and openTaskDefinition intents. DOT IDs may also be
// quoted strings; those are validated by ValidateTaskName alone.
var nodeIDRegex = regexp.MustCompile(`^[A-Za-z0-9_.:/@-]+$`)

// ValidateNodeID validates a node identifier received over the channel.
// Quoted DOT identifiers arrive unquoted, so the character set is wider
// than bare DOT IDs but still excludes whitespace and shell metacharacters.
func ValidateNodeID(id string) error {
	if err := ValidateTaskName(id); err != nil {
		return err
	}

	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidContent, "invalid node identifier: %q", id)
	}

	return nil
}
