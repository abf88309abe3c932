package model

// Language selects the prompt and placeholder locale for fetch operations.
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

// ParseLanguage maps a raw language tag to a supported Language, defaulting
// to English for anything unrecognized.
func ParseLanguage(s string) Language {
	if s == string(LangChinese) {
		return LangChinese
	}
	return LangEnglish
}
