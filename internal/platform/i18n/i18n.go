package i18n

import (
	"net/http"
	"strings"
)

const (
	LangArabic  = "ar"
	LangEnglish = "en"
	DefaultLang = LangArabic
)

// Text holds an Arabic/English pair.
type Text struct {
	AR string `json:"ar" yaml:"ar"`
	EN string `json:"en" yaml:"en"`
}

// In picks the value for lang, falling back to the other language when empty.
func (t Text) In(lang string) string {
	if lang == LangEnglish {
		if t.EN != "" {
			return t.EN
		}
		return t.AR
	}
	if t.AR != "" {
		return t.AR
	}
	return t.EN
}

func (t Text) Trimmed() Text {
	return Text{AR: strings.TrimSpace(t.AR), EN: strings.TrimSpace(t.EN)}
}

func (t Text) Complete() bool {
	return strings.TrimSpace(t.AR) != "" && strings.TrimSpace(t.EN) != ""
}

// FromRequest reads the lang query parameter, defaulting to Arabic.
func FromRequest(r *http.Request) string {
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("lang")), LangEnglish) {
		return LangEnglish
	}
	return DefaultLang
}
