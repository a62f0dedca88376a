package generator

import (
	"iter"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the window size, in characters, used for per-chunk generation.
	DefaultChunkSize = 500

	// SimpleMinSentence is the minimum sentence length for the single-question builder.
	SimpleMinSentence = 20

	// BatchMinSentence is the minimum sentence length for the fallback batch generator.
	BatchMinSentence = 30
)

// Chunks yields consecutive, non-overlapping windows of size characters
// covering text in order. The last window may be shorter. Windows are cut
// on character boundaries only, never on word or sentence boundaries.
//
// The sequence is lazy and can be ranged over any number of times.
func Chunks(text string, size int) iter.Seq[string] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func(string) bool) {
		rest := text
		for rest != "" {
			cut := runeOffset(rest, size)
			if !yield(rest[:cut]) {
				return
			}
			rest = rest[cut:]
		}
	}
}

// FirstChunks collects at most n windows from Chunks(text, size).
func FirstChunks(text string, size, n int) []string {
	var out []string
	if n <= 0 {
		return out
	}
	for c := range Chunks(text, size) {
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}

// Sentences splits text on '.', trims each piece, and keeps the pieces that
// are at least minLength characters long.
func Sentences(text string, minLength int) []string {
	var out []string
	for _, piece := range strings.Split(text, ".") {
		piece = strings.TrimSpace(piece)
		if utf8.RuneCountInString(piece) >= minLength {
			out = append(out, piece)
		}
	}
	return out
}

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	return s[:runeOffset(s, n)]
}

// runeOffset returns the byte offset just past the first n runes of s,
// or len(s) when s is shorter.
func runeOffset(s string, n int) int {
	if n <= 0 {
		return 0
	}
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
