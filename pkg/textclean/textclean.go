// Package textclean normalizes text fetched from search backends before it
// is fed back into a reasoning transcript.
package textclean

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
	reAnySpace = regexp.MustCompile(`\s+`)
)

var fixes = strings.NewReplacer(
	"ﬁ", "fi", "ﬂ", "fl",
	"—", "-", "–", "-",
	"·", ".", "•", "-",
	"\u00a0", " ",
)

// Clean removes control characters, common ligature artifacts and runs of blanks.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	// remove control chars except newline
	b := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	b = fixes.Replace(b)
	b = reSpaces.ReplaceAllString(b, " ")
	b = reNewlines.ReplaceAllString(b, "\n\n")

	return strings.TrimSpace(b)
}

// Snippet cleans text into a single line without a trailing period, the
// shape an intermediate answer takes in a transcript.
func Snippet(text string) string {
	s := reAnySpace.ReplaceAllString(Clean(text), " ")
	return strings.TrimSpace(strings.TrimRight(s, "."))
}

// HTMLText returns the cleaned text content of an HTML fragment.
func HTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	return Clean(doc.Text()), nil
}
