package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// wordPattern matches runs of two or more word characters
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TFIDF is a fitted TF-IDF vectorizer: word n-gram counts weighted by inverse
// document frequency, then L2 normalized
type TFIDF struct {
	// Lowercase defaults to true when absent, as in TfidfVectorizer
	Lowercase   *bool          `json:"lowercase,omitempty"`
	NgramRange  [2]int         `json:"ngram_range"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	// Tokenizer optionally names a tokenizer.json; its subword tokens replace
	// the word pattern
	Tokenizer string `json:"tokenizer,omitempty"`

	tk *tokenizer.Tokenizer
}

func decodeTFIDF(dir string, data []byte) (*TFIDF, error) {
	var v TFIDF
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode tfidf vectorizer: %w", err)
	}
	if err := v.init(dir); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *TFIDF) init(dir string) error {
	if v.Lowercase == nil {
		lower := true
		v.Lowercase = &lower
	}
	if v.NgramRange == [2]int{} {
		v.NgramRange = [2]int{1, 1}
	}
	if v.NgramRange[0] < 1 || v.NgramRange[1] < v.NgramRange[0] {
		return fmt.Errorf("invalid ngram_range %v", v.NgramRange)
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("tfidf: %d idf weights for %d terms", len(v.IDF), len(v.Vocabulary))
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("tfidf: term %q has index %d outside vocabulary", term, idx)
		}
	}
	if v.Tokenizer != "" {
		path := v.Tokenizer
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		tk, err := pretrained.FromFile(path)
		if err != nil {
			return fmt.Errorf("load tokenizer: %w", err)
		}
		v.tk = tk
	}
	return nil
}

// Dim returns the length of produced vectors
func (v *TFIDF) Dim() int {
	return len(v.IDF)
}

// Vectorize returns the dense TF-IDF vector of text
func (v *TFIDF) Vectorize(_ context.Context, text string) ([]float64, error) {
	tokens, err := v.tokens(text)
	if err != nil {
		return nil, err
	}

	x := make([]float64, len(v.IDF))
	for n := v.NgramRange[0]; n <= v.NgramRange[1]; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := strings.Join(tokens[i:i+n], " ")
			if idx, ok := v.Vocabulary[term]; ok {
				x[idx]++
			}
		}
	}

	for i, tf := range x {
		if tf == 0 {
			continue
		}
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		x[i] = tf * v.IDF[i]
	}

	switch v.Norm {
	case "", "l2":
		normalize(x, l2(x))
	case "l1":
		normalize(x, l1(x))
	case "none":
	default:
		return nil, fmt.Errorf("tfidf: unknown norm %q", v.Norm)
	}
	return x, nil
}

func (v *TFIDF) tokens(text string) ([]string, error) {
	if v.Lowercase == nil || *v.Lowercase {
		text = strings.ToLower(text)
	}
	if v.tk == nil {
		return wordPattern.FindAllString(text, -1), nil
	}
	en, err := v.tk.EncodeSingle(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return en.Tokens, nil
}

func l2(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func l1(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += math.Abs(v)
	}
	return sum
}

func normalize(x []float64, norm float64) {
	if norm == 0 {
		return
	}
	for i := range x {
		x[i] /= norm
	}
}
