package cleaning

import (
	_ "embed"
	"strings"
	"unicode"
)

//go:embed words.txt
var wordList string

var englishWords = loadWords(wordList)

func loadWords(list string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(list) {
		words[strings.ToLower(w)] = true
	}
	return words
}

// ContainsEnglishWord reports whether any word of text is a common English word
func ContainsEnglishWord(text string) bool {
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}) {
		w = strings.ToLower(strings.Trim(w, "'"))
		if englishWords[w] || englishWords[Lemmatize(w)] {
			return true
		}
	}
	return false
}
