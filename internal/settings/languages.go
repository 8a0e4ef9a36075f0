package settings

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Language identifies a supported scripting language.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageRuby       Language = "ruby"
	LanguageJulia      Language = "julia"
	LanguageR          Language = "r"
	LanguagePHP        Language = "php"
	LanguageDeno       Language = "deno"
	LanguageSQL        Language = "sql"
)

var supportedLanguages = []Language{
	LanguageJavaScript,
	LanguagePython,
	LanguageRuby,
	LanguageJulia,
	LanguageR,
	LanguagePHP,
	LanguageDeno,
	LanguageSQL,
}

var displayOverrides = map[Language]string{
	LanguageJavaScript: "JavaScript",
	LanguagePHP:        "PHP",
	LanguageSQL:        "SQL",
}

// SupportedLanguages returns the fixed language enumeration in display order.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// ParseLanguage reports whether value names a supported language.
func ParseLanguage(value string) (Language, bool) {
	for _, lang := range supportedLanguages {
		if string(lang) == value {
			return lang, true
		}
	}
	return "", false
}

// Valid reports whether l is part of the supported enumeration.
func (l Language) Valid() bool {
	_, ok := ParseLanguage(string(l))
	return ok
}

// DisplayName returns a human-readable label.
func (l Language) DisplayName() string {
	if name, ok := displayOverrides[l]; ok {
		return name
	}
	return cases.Title(language.English).String(string(l))
}
