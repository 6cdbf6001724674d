// Package chunker splits document text into overlapping, token-bounded
// chunks that respect sentence boundaries.
package chunker

import "strings"

// Params controls chunk sizing. MinTokens is accepted for API symmetry but
// does not force early chunk closure: a chunk closes only when adding the
// next sentence would push it past MaxTokens. Callers should not rely on a
// lower bound for any chunk.
type Params struct {
	MinTokens     int
	MaxTokens     int
	OverlapTokens int
}

// DefaultParams returns the standard chunk sizing.
func DefaultParams() Params {
	return Params{MinTokens: 500, MaxTokens: 800, OverlapTokens: 100}
}

// Piece is one emitted chunk.
type Piece struct {
	Content    string
	TokenCount int
}

// CountTokens approximates sub-word token count as ceil(len/4), the usual
// ~4-characters-per-token heuristic. It is a sizing proxy, not exact.
func CountTokens(text string) int {
	return (len(text) + 3) / 4
}

// Split chunks text into sentence-aligned pieces. Sentences accumulate until
// the next one would exceed MaxTokens; the closed chunk's tail sentences,
// up to OverlapTokens, seed the next chunk. A sentence larger than MaxTokens
// is never split and simply extends its chunk. Output is deterministic and
// preserves document order; empty input yields nil.
func Split(text string, p Params) []Piece {
	if p.MaxTokens <= 0 {
		p = DefaultParams()
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var pieces []Piece
	var current []string
	currentTokens := 0

	for _, sentence := range sentences {
		sentenceTokens := CountTokens(sentence)

		if currentTokens+sentenceTokens > p.MaxTokens && len(current) > 0 {
			pieces = append(pieces, Piece{
				Content:    strings.Join(current, " "),
				TokenCount: currentTokens,
			})
			current, currentTokens = overlapTail(current, p.OverlapTokens)
		}

		current = append(current, sentence)
		currentTokens += sentenceTokens
	}

	if len(current) > 0 {
		pieces = append(pieces, Piece{
			Content:    strings.Join(current, " "),
			TokenCount: currentTokens,
		})
	}

	return pieces
}

// overlapTail walks backward over a closed chunk's sentences, keeping whole
// sentences while their cumulative token count stays within the overlap
// budget. The first sentence that would exceed it stops the walk.
func overlapTail(sentences []string, overlapTokens int) ([]string, int) {
	var tail []string
	tokens := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		t := CountTokens(sentences[i])
		if tokens+t > overlapTokens {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		tokens += t
	}
	return tail, tokens
}

// splitSentences cuts text after '.', '!' or '?' followed by whitespace and
// drops blank fragments. The separating whitespace is consumed.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(text) && isSpace(text[i+1]) {
			if frag := text[start : i+1]; strings.TrimSpace(frag) != "" {
				sentences = append(sentences, frag)
			}
			i++
			for i < len(text) && isSpace(text[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(text) {
		if frag := text[start:]; strings.TrimSpace(frag) != "" {
			sentences = append(sentences, frag)
		}
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
