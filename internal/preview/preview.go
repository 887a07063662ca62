package preview

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text returns a plain-text rendition of an email body suitable for
// one-line previews. When the plain body is empty, the HTML body is
// parsed and stripped of markup, scripts, and styles. Whitespace is
// collapsed and the result truncated to maxLen runes.
func Text(body, htmlBody string, maxLen int) string {
	text := strings.TrimSpace(body)
	if text == "" && htmlBody != "" {
		text = fromHTML(htmlBody)
	}

	text = collapseWhitespace(text)
	return truncate(text, maxLen)
}

// fromHTML extracts the visible text from an HTML email body.
func fromHTML(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}

	doc.Find("script, style, head").Remove()
	return doc.Text()
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most maxLen runes, appending an ellipsis when
// anything was removed.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return strings.TrimSpace(string(runes[:maxLen-1])) + "…"
}
