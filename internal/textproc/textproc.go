package textproc

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
)

// DefaultMinTokenLength drops one- and two-letter fragments left over after
// punctuation stripping.
const DefaultMinTokenLength = 3

var (
	whitespace = regexp.MustCompile(`\s+`)
	// Everything that is not a letter goes: punctuation, digits, symbols.
	nonLetter = regexp.MustCompile(`[^\p{L}\s]+`)
)

var stopwords = map[string]struct{}{
	"и": {}, "в": {}, "на": {}, "с": {}, "по": {}, "к": {},
	"что": {}, "как": {}, "это": {}, "из": {}, "от": {}, "до": {},
	"не": {}, "но": {}, "же": {}, "бы": {}, "для": {}, "его": {},
	"все": {}, "они": {}, "был": {}, "была": {}, "было": {},
	"a": {}, "an": {}, "the": {}, "to": {}, "in": {}, "for": {},
	"and": {}, "of": {}, "is": {}, "was": {}, "this": {}, "that": {},
	"with": {}, "not": {}, "are": {}, "but": {},
}

// Tokens lowercases the input, strips punctuation and digits, splits on
// whitespace, and drops stopwords and tokens shorter than minLen runes.
func Tokens(input string, minLen int) []string {
	if input == "" {
		return nil
	}

	decoded := html.UnescapeString(strings.ToLower(input))
	decoded = nonLetter.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")

	var tokens []string
	for _, token := range strings.Fields(decoded) {
		if len([]rune(token)) < minLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

// Normalize is the tokenizer output joined back into a single string, the
// form persisted as clean_text. It is idempotent: normalizing its own
// output changes nothing.
func Normalize(input string, minLen int) string {
	return strings.Join(Tokens(input, minLen), " ")
}

// DocumentID hashes the most stable review fields to form deterministic IDs.
func DocumentID(movieID, reviewText, author string) string {
	s := sha1.Sum([]byte(movieID + "|" + reviewText + "|" + author))
	return hex.EncodeToString(s[:])
}
