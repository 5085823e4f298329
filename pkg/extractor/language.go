package extractor

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// languageSet bounds the detector's model memory to the languages we
// realistically encounter.
var languageSet = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Russian,
	lingua.Japanese,
	lingua.Chinese,
}

// detectLanguage guesses the ISO-639-1 code for a page without a lang
// attribute. Defaults to "en" when there is too little text to judge.
func detectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < minParagraphLen {
		return "en"
	}

	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(languageSet...).
			Build()
	})

	if language, ok := detector.DetectLanguageOf(text); ok {
		return strings.ToLower(language.IsoCode639_1().String())
	}
	return "en"
}
