package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is the display language of a session or request.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

var chinaChinese = language.Make("zh-CN")

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = LanguageEnglish

// ParseLanguage maps a BCP 47 tag ("zh", "zh-CN", "en_US", ...) onto a supported Language.
// An empty string yields DefaultLanguage.
func ParseLanguage(raw string) (Language, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", "-"))
	if raw == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unsupported language %q: %w", raw, err)
	}
	base, _ := tag.Base()
	switch base.String() {
	case "zh":
		return LanguageChinese, nil
	case "en":
		return LanguageEnglish, nil
	}
	return "", fmt.Errorf("unsupported language %q", raw)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageChinese
}

// Tag returns the regional tag used for metadata lookups and date formatting.
func (l Language) Tag() language.Tag {
	if l == LanguageChinese {
		return chinaChinese
	}
	return language.AmericanEnglish
}

// Code returns the region-qualified code sent to the metadata service ("zh-CN", "en-US").
func (l Language) Code() string {
	return l.Tag().String()
}

// Other returns the language a toggle switches to.
func (l Language) Other() Language {
	if l == LanguageChinese {
		return LanguageEnglish
	}
	return LanguageChinese
}
