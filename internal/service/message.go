package service

import (
	"fmt"
	"strings"

	"prephub/internal/domain"
)

// normalizeMessage trims surrounding whitespace and enforces the length cap.
// A message that is empty after trimming is rejected; an over-long one is
// silently truncated to maxRunes rather than refused, matching client
// behaviour of capping input rather than erroring mid-send.
func normalizeMessage(text string, maxRunes int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: message cannot be empty", domain.ErrInvalidInput)
	}
	if runes := []rune(text); maxRunes > 0 && len(runes) > maxRunes {
		text = string(runes[:maxRunes])
	}
	return text, nil
}

// reverseInPlace flips a DESC-ordered page into chronological order.
func reverseInPlace[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
