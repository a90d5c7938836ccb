package i18n

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextIn(t *testing.T) {
	text := Text{AR: "ممتاز", EN: "Excellent"}
	assert.Equal(t, "Excellent", text.In(LangEnglish))
	assert.Equal(t, "ممتاز", text.In(LangArabic))
	assert.Equal(t, "ممتاز", text.In("fr"))
	assert.Equal(t, "ممتاز", Text{AR: "ممتاز"}.In(LangEnglish))
	assert.Equal(t, "Excellent", Text{EN: "Excellent"}.In(LangArabic))
}

func TestTextComplete(t *testing.T) {
	assert.True(t, Text{AR: "أ", EN: "A"}.Complete())
	assert.False(t, Text{AR: "أ", EN: " "}.Complete())
	assert.Equal(t, Text{AR: "أ", EN: "A"}, Text{AR: " أ ", EN: "A "}.Trimmed())
}

func TestFromRequest(t *testing.T) {
	assert.Equal(t, LangEnglish, FromRequest(httptest.NewRequest("GET", "/?lang=EN", nil)))
	assert.Equal(t, LangArabic, FromRequest(httptest.NewRequest("GET", "/?lang=de", nil)))
	assert.Equal(t, LangArabic, FromRequest(httptest.NewRequest("GET", "/", nil)))
}
