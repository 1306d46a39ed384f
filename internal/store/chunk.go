package store

import (
	"strings"
	"unicode"
)

// ChunkText splits text into chunks of roughly size characters, breaking at
// paragraph and sentence boundaries where possible and at word boundaries as
// a last resort. Size of 0 or less defaults to 500.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = 500
	}

	var chunks []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	add := func(piece string) {
		if cur.Len() > 0 && cur.Len()+len(piece)+1 > size {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= size {
			add(para)
			continue
		}
		for _, sentence := range splitSentences(para) {
			if len(sentence) <= size {
				add(sentence)
				continue
			}
			for _, word := range strings.Fields(sentence) {
				add(word)
			}
		}
	}
	flush()
	return chunks
}

// splitSentences breaks text after sentence-ending punctuation followed by
// whitespace. The punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
