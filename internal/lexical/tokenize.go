package lexical

import (
	"regexp"
	"strings"
)

// wordRe matches maximal runs of [A-Za-z0-9_].
var wordRe = regexp.MustCompile(`\w+`)

// Tokenize lower-cases text and splits it into word tokens.
// Punctuation and whitespace are separators only.
func Tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}
