package ytsub

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// DefaultLineWidth is the maximum length of an output line, unless a single
// sentence is longer.
const DefaultLineWidth = 100

// noise matches the parts of caption text that are discarded: bracketed and
// parenthesized annotations, speaker labels, links, and anything that is not
// a letter, digit, space, or sentence punctuation.
var noise = regexp.MustCompile(`\[.*?\]|\(.*?\)|\w+:\s|http\S+|www\S+|[^a-zA-Z0-9 .,?!]`)

type sentenceTokenizer interface {
	Tokenize(text string) []*sentences.Sentence
}

// A Normalizer converts caption segments into readable lines of text.
type Normalizer struct {
	width int
	tok   sentenceTokenizer
}

// NewNormalizer constructs a Normalizer that packs sentences into lines of at
// most width characters. If width ≤ 0, DefaultLineWidth is used.
func NewNormalizer(width int) (*Normalizer, error) {
	if width <= 0 {
		width = DefaultLineWidth
	}
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading sentence tokenizer: %w", err)
	}
	return &Normalizer{width: width, tok: tok}, nil
}

// Normalize cleans the text of segs, splits it into sentences, and packs the
// sentences into newline-separated lines. Sentences are never split, so a
// line may exceed the width only when it holds one long sentence.
func (n *Normalizer) Normalize(segs []Segment) string {
	var sents []string
	for _, s := range n.tok.Tokenize(CleanText(segs)) {
		if t := collapseSpace(s.Text); t != "" {
			sents = append(sents, t)
		}
	}
	return strings.Join(PackLines(sents, n.width), "\n")
}

// CleanText joins the ASCII-only segments of segs with spaces, removes
// annotations, links, and unwanted characters, and converts the result to
// lower case.
func CleanText(segs []Segment) string {
	var kept []string
	for _, seg := range segs {
		if isASCII(seg.Text) {
			kept = append(kept, collapseSpace(seg.Text))
		}
	}
	text := noise.ReplaceAllString(strings.Join(kept, " "), "")
	return strings.ToLower(text)
}

// PackLines greedily packs sentences into lines. A sentence joins the current
// line if the line, including a separating space, stays within width;
// otherwise the current line is finished and the sentence starts a new one.
func PackLines(sents []string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, s := range sents {
		if cur.Len()+len(s)+1 > width && cur.Len() != 0 {
			lines = append(lines, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
		cur.WriteString(s)
		cur.WriteByte(' ')
	}
	if cur.Len() != 0 {
		lines = append(lines, strings.TrimSpace(cur.String()))
	}
	return lines
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func collapseSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
