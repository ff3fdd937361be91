package domain

import "strings"

// Language identifies a supported source language.
type Language string

const (
	LanguageCpp        Language = "cpp"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
)

// SupportedLanguages lists every language the engine can judge, in display order.
var SupportedLanguages = []Language{
	LanguageCpp,
	LanguagePython,
	LanguageJavaScript,
	LanguageJava,
}

// ParseLanguage resolves a wire name into a Language. Matching is case-insensitive.
func ParseLanguage(name string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(name)))
	for _, supported := range SupportedLanguages {
		if lang == supported {
			return lang, true
		}
	}
	return "", false
}

// Compiled reports whether the language has a distinct compile phase.
func (l Language) Compiled() bool {
	return l == LanguageCpp || l == LanguageJava
}

// Extension is the file extension used when staging source text.
func (l Language) Extension() string {
	switch l {
	case LanguageCpp:
		return "cpp"
	case LanguagePython:
		return "py"
	case LanguageJavaScript:
		return "js"
	case LanguageJava:
		return "java"
	default:
		return "txt"
	}
}
