package router

import "github.com/missionai/agrimesh/core"

// DetectLanguage inspects the Unicode scripts present in the text and
// returns the language the message appears to be written in. Kannada and
// Devanagari codepoints take precedence in that order; everything else,
// including empty input, resolves to English.
func DetectLanguage(text string) core.Language {
	hasDevanagari := false
	for _, r := range text {
		switch {
		case r >= 0x0C80 && r <= 0x0CFF:
			return core.LanguageKannada
		case r >= 0x0900 && r <= 0x097F:
			hasDevanagari = true
		}
	}
	if hasDevanagari {
		return core.LanguageHindi
	}
	return core.DefaultLanguage
}
