package memory

import (
	"strings"
	"unicode"
)

// tokenize splits text on anything that is not a letter or digit, lower-
// casing the result. Hangul syllables (U+AC00-D7A3) and jamo are treated
// as letters by unicode.IsLetter already, but CJK text carries no spaces
// between words, so keyword search additionally queries character
// trigrams over Hangul/CJK runs (see trigrams) rather than relying on
// whitespace tokenization alone. The FTS5 index itself is built by the
// unicode61 tokenizer, not from trigrams.
func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(unicode.ToLower(r))
			continue
		}
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// isCJK reports whether r falls in a CJK/Hangul block where words are not
// whitespace-delimited, so substring/trigram matching is more useful than
// whole-token matching.
func isCJK(r rune) bool {
	switch {
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	case r >= 0x1100 && r <= 0x11FF: // Hangul jamo
		return true
	case r >= 0x3130 && r <= 0x318F: // Hangul compatibility jamo
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3040 && r <= 0x30FF: // hiragana/katakana
		return true
	}
	return false
}

// trigrams extracts overlapping 3-rune windows from contiguous CJK runs,
// supplementing whitespace tokenization for scripts with no word
// boundaries. Runs shorter than 3 runes yield the run itself.
func trigrams(text string) []string {
	runes := []rune(text)
	var grams []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := runes[start:end]
		if len(run) < 3 {
			grams = append(grams, string(run))
		} else {
			for i := 0; i+3 <= len(run); i++ {
				grams = append(grams, string(run[i:i+3]))
			}
		}
		start = -1
	}
	for i, r := range runes {
		if isCJK(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(runes))
	return grams
}
