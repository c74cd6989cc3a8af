package sources

import (
	"strings"
	"unicode/utf8"
)

const (
	shortContentRunes = 200
	maxSummaryRunes   = 500
	summarySentences  = 3
)

// FirstSentences summarises content by its opening sentences. Content under
// 200 characters is returned unchanged; longer results are cut at 500
// characters with a trailing ellipsis.
func FirstSentences(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < shortContentRunes {
		return content
	}

	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return ellipsize(content, maxSummaryRunes)
	}

	if len(sentences) > summarySentences {
		sentences = sentences[:summarySentences]
	}
	return ellipsize(strings.Join(sentences, " "), maxSummaryRunes)
}

// splitSentences splits on the first of ". ", "! " or "? " that occurs in
// content. Only that delimiter is used.
func splitSentences(content string) []string {
	for _, delimiter := range []string{". ", "! ", "? "} {
		if !strings.Contains(content, delimiter) {
			continue
		}

		parts := strings.Split(content, delimiter)
		mark := strings.TrimSpace(delimiter)
		sentences := make([]string, 0, len(parts))
		for _, part := range parts[:len(parts)-1] {
			sentences = append(sentences, part+mark)
		}
		if last := parts[len(parts)-1]; last != "" {
			sentences = append(sentences, last)
		}
		return sentences
	}
	return nil
}

func ellipsize(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return truncate(s, n) + "..."
}
