package utils

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// StripMarkup returns the text content of an HTML fragment. Tags are dropped,
// entities decoded, and block-level boundaries become a single space.
func StripMarkup(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return content
	}

	tokenizer := html.NewTokenizerFragment(strings.NewReader(content), "body")
	var b strings.Builder
	skip := 0 // depth inside <script>/<style>

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // io.EOF, or malformed input we simply stop on
		}

		switch tt {
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
			}
			if isBlockTag(tag) {
				b.WriteByte(' ')
			}
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "table", "tr", "td", "th", "section", "article":
		return true
	}
	return false
}

// CountWords counts runs of letters, digits, apostrophes and hyphens.
func CountWords(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' {
			if !inWord {
				n++
				inWord = true
			}
			continue
		}
		inWord = false
	}
	return n
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == max {
			return s[:pos]
		}
		i++
	}
	return s
}
