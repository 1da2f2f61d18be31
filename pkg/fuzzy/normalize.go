// Package fuzzy provides text normalization and similarity scoring for
// matching free-text song queries against candidate track titles.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(?:feat\.?|ft\.?|featuring)\s+[^\)\]]*[\)\]]?\s*`)
	versionRegex    = regexp.MustCompile(`(?i)\s*[\(\[]\s*(remaster|remastered|deluxe|extended|radio edit|live|acoustic|clean|explicit)[^\)\]]*[\)\]]\s*`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeTitle strips featuring credits and edition suffixes from a track
// title and canonicalizes it for comparison.
func (n *Normalizer) NormalizeTitle(title string) string {
	// Credit and edition markers are matched on the raw title; the bracket
	// cues are gone once punctuation is stripped.
	title = featRegex.ReplaceAllString(title, " ")
	title = versionRegex.ReplaceAllString(title, " ")

	return n.basicNormalize(title)
}

// NormalizeQuery canonicalizes a raw user query the same way titles are
// canonicalized, so the two sides compare on equal footing.
func (n *Normalizer) NormalizeQuery(query string) string {
	return n.basicNormalize(query)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	return strings.TrimSpace(text)
}

// Similarity returns a score in [0, 1] based on the longest common
// subsequence ratio of the two normalized strings.
func (n *Normalizer) Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	return float64(longestCommonSubsequence(s1, s2)) / float64(max(len(s1), len(s2)))
}

// Score rates how well a candidate (title, artist) matches a raw query. The
// query may or may not mention the artist, so the better of title-only and
// title-plus-artist similarity wins.
func (n *Normalizer) Score(query, title, artist string) float64 {
	q := n.NormalizeQuery(query)
	t := n.NormalizeTitle(title)

	score := n.Similarity(q, t)
	if artist != "" {
		withArtist := n.Similarity(q, strings.TrimSpace(t+" "+n.basicNormalize(artist)))
		if withArtist > score {
			score = withArtist
		}
	}
	return score
}

func longestCommonSubsequence(s1, s2 string) int {
	m, n := len(s1), len(s2)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if s1[i-1] == s2[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	return dp[m][n]
}
