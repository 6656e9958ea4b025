// Package langdetect provides the ports.LanguageDetector adapter.
package langdetect

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// WhatlangDetector detects languages with trigram statistics. Short or mixed
// queries may be misdetected.
type WhatlangDetector struct{}

// NewWhatlangDetector creates a detector.
func NewWhatlangDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

// Detect returns the ISO 639-1 code of text's language.
func (d *WhatlangDetector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text to detect")
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", fmt.Errorf("language of %q not recognised", truncate(text, 40))
	}
	return code, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
