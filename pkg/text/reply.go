// Package text classifies free-text chat replies against the small fixed
// phrase sets the bot understands.
package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RejectPhrase is the canonical rejection phrase carried by the confirmation
// card's reject action.
const RejectPhrase = "no"

var rejectionPhrases = map[string]bool{
	"no":        true,
	"nope":      true,
	"nah":       true,
	"cancel":    true,
	"wrong":     true,
	"not this":  true,
	"try again": true,
}

// Clean trims and canonicalizes raw message text for matching and searching.
func Clean(text string) string {
	text = norm.NFKC.String(text)
	text = strings.TrimSpace(text)
	return strings.Join(strings.Fields(text), " ")
}

// IsRejection reports whether the text is a recognized negative phrase,
// case-insensitively and ignoring surrounding whitespace and trailing
// punctuation.
func IsRejection(text string) bool {
	text = strings.ToLower(Clean(text))
	text = strings.TrimRight(text, ".!?")
	return rejectionPhrases[text]
}
