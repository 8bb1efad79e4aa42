package core

// Language identifies one of the supported conversation languages.
type Language string

const (
	// LanguageKannada is Kannada (kn).
	LanguageKannada Language = "kannada"
	// LanguageEnglish is English (en), the default for new sessions.
	LanguageEnglish Language = "english"
	// LanguageHindi is Hindi (hi).
	LanguageHindi Language = "hindi"
)

// DefaultLanguage is assigned to sessions created without an explicit
// preference.
const DefaultLanguage = LanguageEnglish

// ParseLanguage normalizes a raw string into a supported Language. Unknown
// values map to the default.
func ParseLanguage(s string) Language {
	switch Language(s) {
	case LanguageKannada, LanguageEnglish, LanguageHindi:
		return Language(s)
	default:
		return DefaultLanguage
	}
}

// Code returns the ISO 639-1 code used by external speech and translation
// services.
func (l Language) Code() string {
	switch l {
	case LanguageKannada:
		return "kn"
	case LanguageHindi:
		return "hi"
	default:
		return "en"
	}
}
