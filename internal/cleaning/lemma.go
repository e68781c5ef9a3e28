package cleaning

import (
	"regexp"
	"strings"
)

// tokenPattern splits words (keeping inner apostrophes) from punctuation
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:'[\p{L}]+)?|[^\s\p{L}\p{N}]`)

// Tokenize splits text into word and punctuation tokens
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// irregular plural forms
var irregular = map[string]string{
	"children": "child",
	"men":      "man",
	"women":    "woman",
	"feet":     "foot",
	"teeth":    "tooth",
	"mice":     "mouse",
	"geese":    "goose",
	"people":   "people",
	"data":     "data",
	"news":     "news",
	"series":   "series",
	"species":  "species",
}

// Lemmatize reduces a lowercase noun to its singular base form
func Lemmatize(word string) string {
	w := strings.ToLower(word)
	if base, ok := irregular[w]; ok {
		return base
	}
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case strings.HasSuffix(w, "sses"):
		return w[:n-2]
	case n > 4 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes")):
		return w[:n-2]
	case n > 3 && (strings.HasSuffix(w, "xes") || strings.HasSuffix(w, "zes")):
		return w[:n-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case n > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "'s"):
		return w[:n-1]
	}
	return w
}

// LemmatizeText tokenizes text and joins the lowercase lemmas with spaces
func LemmatizeText(text string) string {
	tokens := Tokenize(text)
	lemmas := make([]string, len(tokens))
	for i, t := range tokens {
		lemmas[i] = Lemmatize(t)
	}
	return strings.Join(lemmas, " ")
}
