package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"droplink/internal/domain/entity"
)

// Field weights mirror the catalog's text index.
const (
	TitleWeight       = 3
	TagsWeight        = 2
	DescriptionWeight = 1
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "for": true,
	"in": true, "on": true, "with": true, "to": true, "or": true, "is": true,
}

// FoldText case-folds s and strips diacritics so "Café" matches "cafe".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

func tokenize(s string) []string {
	return strings.FieldsFunc(FoldText(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SearchTerms returns the distinct, folded, non-stop-word terms of a query.
func SearchTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, tok := range tokenize(query) {
		if stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}

// TextScore weighs term occurrences in title, tags and description. Zero
// means the item does not match. A title containing the whole query as a
// phrase earns one extra title weight.
func TextScore(item *entity.Item, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}

	wanted := make(map[string]bool, len(terms))
	for _, t := range terms {
		wanted[t] = true
	}
	count := func(text string) int {
		n := 0
		for _, tok := range tokenize(text) {
			if wanted[tok] {
				n++
			}
		}
		return n
	}

	score := float64(TitleWeight * count(item.Title))
	for _, tag := range item.Tags {
		score += float64(TagsWeight * count(tag))
	}
	score += float64(DescriptionWeight * count(item.Description))

	if score > 0 && len(terms) > 1 {
		title := strings.Join(tokenize(item.Title), " ")
		if strings.Contains(title, strings.Join(terms, " ")) {
			score += TitleWeight
		}
	}
	return score
}
