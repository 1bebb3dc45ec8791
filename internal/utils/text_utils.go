package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// truncationMarker is appended to previews cut to the size limit
const truncationMarker = "..."

// TextProcessor prepares preview text before it is sent upstream
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxSize bytes without splitting a rune
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Preview truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationMarker
}

// SanitizeUTF8 drops invalid UTF-8 bytes and control characters other than
// newline and tab
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == utf8.RuneError:
			return -1
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, text)

	if len(clean) != len(text) {
		tp.logger.Debug("Preview sanitized",
			zap.Int("original_size", len(text)),
			zap.Int("sanitized_size", len(clean)))
	}
	return clean
}

// ProcessText sanitizes and truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(strings.TrimSpace(tp.SanitizeUTF8(text)), maxSize)
}
